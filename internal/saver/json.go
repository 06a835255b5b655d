package saver

import (
	"encoding/json"
	"os"

	"monthly-ohlcv/internal/model"
)

// JSONSaver writes rows as an indented JSON array. Undefined indicators are null.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(rows []model.IndicatorRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToRecords(rows)); err != nil {
		return err
	}
	return f.Close()
}
