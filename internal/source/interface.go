// Package source provides the daily-bar inputs of the pipeline.
package source

import (
	"context"

	"monthly-ohlcv/internal/model"
)

// DataSource is the abstraction used by the pipeline when reading daily bars.
// Implementations own their resources; DailyBars must be safe for concurrent
// use once Instruments has returned.
type DataSource interface {
	GetName() string
	// Instruments lists the instrument ids available, in a stable order.
	Instruments(ctx context.Context) ([]string, error)
	// DailyBars returns one instrument's daily bars in any order.
	// Invalid records yield a *model.MalformedInputError.
	DailyBars(ctx context.Context, instrument string) ([]model.DailyBar, error)
	Close() error
}
