package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/wire"

	"monthly-ohlcv/internal/saver"
	"monthly-ohlcv/internal/source"
)

// Instruments is the optional instrument allow-list of a run.
type Instruments []string

// ProviderSet builds everything App needs from a *Config (for Wire).
var ProviderSet = wire.NewSet(
	ProvideRowSaver,
	ProvideInstruments,
	ProvideDataSource,
	wire.Struct(new(App), "*"),
)

// ProvideRowSaver creates RowSaver from config (for Wire).
// Returns error if SaveFormat is not supported.
func ProvideRowSaver(cfg *Config) (saver.RowSaver, error) {
	s := saver.NewRowSaver(cfg.SaveFormat)
	if s == nil {
		return nil, fmt.Errorf("unsupported SAVE_FORMAT %q (use: %s)", cfg.SaveFormat, strings.Join(saver.Formats, ", "))
	}
	return s, nil
}

// ProvideInstruments loads the tickers file, if any (for Wire).
func ProvideInstruments(cfg *Config) (Instruments, error) {
	return LoadInstruments(cfg)
}

// ProvideDataSource creates the configured DataSource (for Wire).
// The cleanup closes it.
func ProvideDataSource(cfg *Config, tickers Instruments) (source.DataSource, func(), error) {
	src, err := CreateSource(cfg, tickers)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := src.Close(); err != nil {
			slog.Warn("close source", "source", src.GetName(), "error", err)
		}
	}
	return src, cleanup, nil
}
