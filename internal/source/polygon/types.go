package polygon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"monthly-ohlcv/internal/model"
)

// aggregate is one daily entry of /v2/aggs results. Only the fields a
// DailyBar needs are decoded.
type aggregate struct {
	Timestamp int64   `json:"t"` // start of the day window, Unix ms
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    number  `json:"v"`
}

// dailyBar maps the aggregate onto its UTC calendar day. Requests are always
// adjusted=true, so the close doubles as the adjusted close.
func (a aggregate) dailyBar(ticker string) model.DailyBar {
	return model.DailyBar{
		InstrumentID:  ticker,
		Date:          model.DateOf(time.UnixMilli(a.Timestamp)),
		Open:          a.Open,
		High:          a.High,
		Low:           a.Low,
		Close:         a.Close,
		Volume:        float64(a.Volume),
		AdjustedClose: a.Close,
	}
}

// AggregatesResponse is one page of the aggregates endpoint.
type AggregatesResponse struct {
	Ticker       string      `json:"ticker"`
	ResultsCount int         `json:"resultsCount"`
	Adjusted     bool        `json:"adjusted"`
	Results      []aggregate `json:"results"`
	Status       string      `json:"status"`
	RequestID    string      `json:"request_id"`
	NextURL      string      `json:"next_url,omitempty"`
}

// number accepts a JSON number (including exponent form such as 1.5e3) or a
// numeric string. Fractional volumes are kept.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("volume %s: not a number", string(data))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("volume %q: %w", s, err)
	}
	*n = number(f)
	return nil
}
