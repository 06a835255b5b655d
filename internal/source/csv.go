package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"monthly-ohlcv/internal/model"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

var headerAliases = map[string]string{
	"adj_close":      "adjclose",
	"adj close":      "adjclose",
	"adjusted_close": "adjclose",
	"symbol":         "ticker",
	"instrument_id":  "ticker",
}

func init() {
	gocsv.SetHeaderNormalizer(normalizeHeader)
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

// csvRow is one raw input line; fields stay text until the owning instrument is loaded.
type csvRow struct {
	Date     string `csv:"date"`
	Open     string `csv:"open"`
	High     string `csv:"high"`
	Low      string `csv:"low"`
	Close    string `csv:"close"`
	Volume   string `csv:"volume"`
	AdjClose string `csv:"adjclose"`
	Ticker   string `csv:"ticker"`

	line int `csv:"-"`
}

// CSVSource reads the combined daily price file
// (date,open,high,low,close,volume,adjclose,ticker) and groups it by ticker.
type CSVSource struct {
	Path string

	once   sync.Once
	err    error
	order  []string
	groups map[string][]csvRow
}

// NewCSVSource creates a source over the CSV file at path. The file is read on first use.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) GetName() string { return "csv" }

func (s *CSVSource) Close() error { return nil }

func (s *CSVSource) load() {
	f, err := os.Open(s.Path)
	if err != nil {
		s.err = fmt.Errorf("open input %s: %w", s.Path, err)
		return
	}
	defer f.Close()

	var rows []csvRow
	lr := &lineReader{r: csv.NewReader(f)}
	if err := gocsv.UnmarshalCSV(lr, &rows); err != nil {
		s.err = fmt.Errorf("read input %s: %w", s.Path, err)
		return
	}

	s.groups = make(map[string][]csvRow)
	for i := range rows {
		r := rows[i]
		r.line = lr.line(i + 1) // record 0 is the header
		t := strings.TrimSpace(r.Ticker)
		if err := CheckTicker(t); err != nil {
			s.err = &model.MalformedInputError{Field: "ticker", Value: t, Line: r.line, Err: err}
			return
		}
		if _, ok := s.groups[t]; !ok {
			s.order = append(s.order, t)
		}
		s.groups[t] = append(s.groups[t], r)
	}
}

// lineReader records the starting line of every record it reads, so errors
// point at the file line even with blank lines or quoted newlines.
type lineReader struct {
	r     *csv.Reader
	lines []int
}

func (l *lineReader) Read() ([]string, error) {
	rec, err := l.r.Read()
	if err != nil {
		return nil, err
	}
	line, _ := l.r.FieldPos(0)
	l.lines = append(l.lines, line)
	return rec, nil
}

func (l *lineReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := l.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func (l *lineReader) line(record int) int {
	if record < len(l.lines) {
		return l.lines[record]
	}
	return 0
}

// CheckTicker rejects ids that are empty or cannot be used as a file name.
func CheckTicker(t string) error {
	switch {
	case t == "":
		return errors.New("missing value")
	case t == "." || t == "..", strings.ContainsAny(t, `/\`+"\x00"):
		return errors.New("not a valid file name")
	}
	return nil
}

// Instruments returns tickers in first-seen order.
func (s *CSVSource) Instruments(ctx context.Context) ([]string, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.order...), nil
}

// DailyBars parses the instrument's rows. The first invalid field aborts the instrument.
func (s *CSVSource) DailyBars(ctx context.Context, instrument string) ([]model.DailyBar, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	rows, ok := s.groups[instrument]
	if !ok {
		return nil, fmt.Errorf("instrument %s not in %s", instrument, s.Path)
	}
	bars := make([]model.DailyBar, 0, len(rows))
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := r.toDailyBar(instrument)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func (r csvRow) toDailyBar(instrument string) (model.DailyBar, error) {
	b := model.DailyBar{InstrumentID: instrument}
	fail := func(field, value string, err error) (model.DailyBar, error) {
		return model.DailyBar{}, &model.MalformedInputError{
			InstrumentID: instrument, Field: field, Value: value, Line: r.line, Err: err,
		}
	}

	date, err := parseDate(r.Date)
	if err != nil {
		return fail("date", r.Date, err)
	}
	b.Date = date

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", r.Open, &b.Open},
		{"high", r.High, &b.High},
		{"low", r.Low, &b.Low},
		{"close", r.Close, &b.Close},
		{"volume", r.Volume, &b.Volume},
		{"adjclose", r.AdjClose, &b.AdjustedClose},
	}
	for _, f := range fields {
		v, err := parseNumber(f.raw)
		if err != nil {
			return fail(f.name, f.raw, err)
		}
		*f.dst = v
	}
	return b, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing value")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// keep the calendar day as written, whatever the offset
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date (want %s)", dateLayouts[0])
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}
