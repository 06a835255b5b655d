package saver

import (
	"encoding/csv"
	"os"
	"strconv"

	"monthly-ohlcv/internal/model"
)

// CSVSaver writes rows as CSV with a header. Undefined indicators are empty cells.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(rows []model.IndicatorRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	if err := w.Write(Header); err != nil {
		return err
	}
	for _, r := range ToRecords(rows) {
		if err := w.Write([]string{
			r.Date,
			floatStr(r.Open),
			floatStr(r.High),
			floatStr(r.Low),
			floatStr(r.Close),
			floatStr(r.Volume),
			floatStr(r.AdjustedClose),
			optStr(r.SMA10),
			optStr(r.SMA20),
			optStr(r.EMA10),
			optStr(r.EMA20),
			r.Ticker,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optStr(p *float64) string {
	if p == nil {
		return ""
	}
	return floatStr(*p)
}
