package saver

import (
	"fmt"
	"path/filepath"
	"strings"

	"monthly-ohlcv/internal/model"
)

// RowSaver persists one instrument's indicator rows to a single file.
// High-level (app) injects the implementation; the pipeline only depends on the interface.
type RowSaver interface {
	Save(rows []model.IndicatorRow, path string) error
	Extension() string
}

// Formats lists the supported SAVE_FORMAT values.
var Formats = []string{"csv", "json", "parquet", "sqlite"}

// NewRowSaver creates implementation by format (csv, json, parquet, sqlite).
// Returns nil if format not supported.
func NewRowSaver(format string) RowSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	case "sqlite":
		return SQLiteSaver{}
	default:
		return nil
	}
}

// ResultPath returns {dir}/result_{instrument}.{ext}.
func ResultPath(dir, instrument string, s RowSaver) string {
	return filepath.Join(dir, fmt.Sprintf("result_%s.%s", instrument, s.Extension()))
}
