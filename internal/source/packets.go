package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"monthly-ohlcv/internal/model"
)

// PacketsSource reads crawler packet files laid out as {Dir}/{TICKER}/*.parquet|json,
// each holding an array of model.Bar.
type PacketsSource struct {
	Dir string
}

// NewPacketsSource creates a source over a crawler output directory.
func NewPacketsSource(dir string) *PacketsSource {
	return &PacketsSource{Dir: dir}
}

func (s *PacketsSource) GetName() string { return "packets" }

func (s *PacketsSource) Close() error { return nil }

// Instruments lists the ticker directories under Dir, sorted.
func (s *PacketsSource) Instruments(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read packets dir %s: %w", s.Dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// DailyBars reads every packet of the instrument. Bars are dated by their UTC day;
// intraday packets therefore yield several bars per date, which the resampler folds.
func (s *PacketsSource) DailyBars(ctx context.Context, instrument string) ([]model.DailyBar, error) {
	files, err := packetFiles(filepath.Join(s.Dir, instrument))
	if err != nil {
		return nil, err
	}
	var out []model.DailyBar
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bars, err := readPacket(path)
		if err != nil {
			return nil, &model.MalformedInputError{InstrumentID: instrument, Field: filepath.Base(path), Err: err}
		}
		for _, b := range bars {
			out = append(out, b.ToDailyBar(instrument))
		}
	}
	return out, nil
}

func packetFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read packets of %s: %w", filepath.Base(dir), err)
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".parquet", ".json":
			if !e.IsDir() {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func readPacket(path string) ([]model.Bar, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return parquet.ReadFile[model.Bar](path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var bars []model.Bar
		if err := json.Unmarshal(data, &bars); err != nil {
			return nil, err
		}
		return bars, nil
	}
}
