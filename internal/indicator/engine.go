package indicator

import (
	"fmt"

	"monthly-ohlcv/internal/model"
)

// Fixed trailing windows computed for every instrument.
const (
	ShortWindow = 10
	LongWindow  = 20
)

// Column names of the indicator fields in written output.
var (
	ColumnSMAShort = Column("sma", ShortWindow)
	ColumnSMALong  = Column("sma", LongWindow)
	ColumnEMAShort = Column("ema", ShortWindow)
	ColumnEMALong  = Column("ema", LongWindow)
)

// Column names an indicator output column, e.g. "sma_10".
func Column(kind string, w int) string {
	return fmt.Sprintf("%s_%d", kind, w)
}

// Closes extracts the close column of bars in order.
func Closes(bars []model.MonthlyBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// AddIndicators annotates bars with SMA and EMA over the close at both
// windows. Each series is computed independently from the same closes.
func AddIndicators(instrument string, bars []model.MonthlyBar) []model.IndicatorRow {
	closes := Closes(bars)
	sma10 := SMA(closes, ShortWindow)
	sma20 := SMA(closes, LongWindow)
	ema10 := EMA(closes, ShortWindow)
	ema20 := EMA(closes, LongWindow)

	rows := make([]model.IndicatorRow, len(bars))
	for i, b := range bars {
		rows[i] = model.IndicatorRow{
			MonthlyBar:   b,
			InstrumentID: instrument,
			SMA10:        sma10[i],
			SMA20:        sma20[i],
			EMA10:        ema10[i],
			EMA20:        ema20[i],
		}
	}
	return rows
}
