//go:build wireinject
// +build wireinject

package main

import (
	"monthly-ohlcv/internal/app"

	"github.com/google/wire"
)

// InitializeApp builds App (saver, instruments, data source) from cfg via Wire.
// Caller must call cleanup when done; it closes the data source.
func InitializeApp(cfg *app.Config) (*app.App, func(), error) {
	wire.Build(app.ProviderSet)
	return nil, nil, nil
}
