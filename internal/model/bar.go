package model

import "time"

// Bar is one crawler packet bar (minute/daily etc.) as stored on disk by the
// upstream crawler under {dir}/{TICKER}/*.parquet|json.
type Bar struct {
	Timestamp    int64   `json:"t" parquet:"t"` // Unix timestamp in milliseconds
	Open         float64 `json:"o" parquet:"o"`
	High         float64 `json:"h" parquet:"h"`
	Low          float64 `json:"l" parquet:"l"`
	Close        float64 `json:"c" parquet:"c"`
	Volume       int64   `json:"v" parquet:"v"`
	VWAP         float64 `json:"vw,omitempty" parquet:"vw,optional"` // Volume weighted average price
	Transactions int64   `json:"n,omitempty" parquet:"n,optional"`   // Number of transactions
}

// ToDailyBar converts a packet bar into a DailyBar dated on the bar's UTC calendar day.
// Packets carry no adjusted close, so the raw close is used.
func (b Bar) ToDailyBar(instrument string) DailyBar {
	return DailyBar{
		InstrumentID:  instrument,
		Date:          DateOf(time.UnixMilli(b.Timestamp)),
		Open:          b.Open,
		High:          b.High,
		Low:           b.Low,
		Close:         b.Close,
		Volume:        float64(b.Volume),
		AdjustedClose: b.Close,
	}
}
