package saver

import (
	"github.com/moznion/go-optional"

	"monthly-ohlcv/internal/model"
)

// DateLayout is the written form of month_end dates.
const DateLayout = "2006-01-02"

// Header is the column order of written rows.
var Header = []string{
	"date", "open", "high", "low", "close", "volume", "adjclose",
	"sma_10", "sma_20", "ema_10", "ema_20", "ticker",
}

// Record is the flat, serializable shape of an IndicatorRow.
// Undefined indicators are nil and serialize as null/empty.
type Record struct {
	Date          string   `json:"date" parquet:"date"`
	Open          float64  `json:"open" parquet:"open"`
	High          float64  `json:"high" parquet:"high"`
	Low           float64  `json:"low" parquet:"low"`
	Close         float64  `json:"close" parquet:"close"`
	Volume        float64  `json:"volume" parquet:"volume"`
	AdjustedClose float64  `json:"adjclose" parquet:"adjclose"`
	SMA10         *float64 `json:"sma_10" parquet:"sma_10,optional"`
	SMA20         *float64 `json:"sma_20" parquet:"sma_20,optional"`
	EMA10         *float64 `json:"ema_10" parquet:"ema_10,optional"`
	EMA20         *float64 `json:"ema_20" parquet:"ema_20,optional"`
	Ticker        string   `json:"ticker" parquet:"ticker"`
}

// ToRecord flattens r.
func ToRecord(r model.IndicatorRow) Record {
	return Record{
		Date:          r.MonthEnd.Format(DateLayout),
		Open:          r.Open,
		High:          r.High,
		Low:           r.Low,
		Close:         r.Close,
		Volume:        r.Volume,
		AdjustedClose: r.AdjustedClose,
		SMA10:         ptr(r.SMA10),
		SMA20:         ptr(r.SMA20),
		EMA10:         ptr(r.EMA10),
		EMA20:         ptr(r.EMA20),
		Ticker:        r.InstrumentID,
	}
}

// ToRecords flattens rows in order.
func ToRecords(rows []model.IndicatorRow) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = ToRecord(r)
	}
	return out
}

func ptr(o optional.Option[float64]) *float64 {
	v, err := o.Take()
	if err != nil {
		return nil
	}
	return &v
}
