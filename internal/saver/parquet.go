package saver

import (
	"github.com/parquet-go/parquet-go"

	"monthly-ohlcv/internal/model"
)

// ParquetSaver writes rows as Parquet. Undefined indicators are null.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(rows []model.IndicatorRow, path string) error {
	return parquet.WriteFile(path, ToRecords(rows))
}
