package app

import (
	"fmt"
	"log/slog"

	"monthly-ohlcv/internal/source"
	"monthly-ohlcv/internal/source/polygon"
)

// CreateSource creates the DataSource named by cfg.Source.
func CreateSource(cfg *Config, tickers Instruments) (source.DataSource, error) {
	switch cfg.Source {
	case "csv":
		return source.NewCSVSource(cfg.InputCSV), nil
	case "packets":
		return source.NewPacketsSource(cfg.PacketsDir), nil
	case "polygon":
		return createPolygonSource(cfg, tickers)
	default:
		return nil, fmt.Errorf("unsupported source: %s. Options: csv, packets, polygon", cfg.Source)
	}
}

func createPolygonSource(cfg *Config, tickers Instruments) (source.DataSource, error) {
	from, to, err := cfg.Period()
	if err != nil {
		return nil, err
	}
	slog.Info("polygon source", "keys", len(cfg.PolygonAPIKeys), "tickers", len(tickers), "cooldown_sec", polygon.KeyCooldown.Seconds())
	return polygon.NewSource(polygon.Options{
		APIKeys: cfg.PolygonAPIKeys,
		Tickers: tickers,
		From:    from,
		To:      to,
	})
}

// LoadInstruments reads the tickers file when one is configured.
func LoadInstruments(cfg *Config) (Instruments, error) {
	if cfg.TickersFile == "" {
		return nil, nil
	}
	slog.Info("reading tickers from file", "path", cfg.TickersFile)
	tickers, err := source.LoadTickersFromFile(cfg.TickersFile)
	if err != nil {
		return nil, fmt.Errorf("load tickers: %w", err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("tickers file %s is empty", cfg.TickersFile)
	}
	return tickers, nil
}
