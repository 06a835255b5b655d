package model

import (
	"time"

	"github.com/moznion/go-optional"
)

// MonthlyBar is the OHLCV reduction of one instrument's daily bars within one
// calendar month, anchored at the last calendar day of that month.
type MonthlyBar struct {
	MonthEnd      time.Time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        float64
	AdjustedClose float64
}

// MonthEnd returns the last calendar day of the month containing t (UTC).
func MonthEnd(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// IndicatorRow is a MonthlyBar annotated with its instrument and the trailing
// indicators over the monthly close. None marks "not yet computable".
type IndicatorRow struct {
	MonthlyBar
	InstrumentID string
	SMA10        optional.Option[float64]
	SMA20        optional.Option[float64]
	EMA10        optional.Option[float64]
	EMA20        optional.Option[float64]
}
