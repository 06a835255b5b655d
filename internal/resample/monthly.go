// Package resample turns an instrument's daily bars into calendar-month OHLCV bars.
package resample

import (
	"math"
	"sort"

	"monthly-ohlcv/internal/model"
)

type monthKey struct {
	year  int
	month int
}

// bucket holds one month's daily bars in chronological order.
type bucket struct {
	key  monthKey
	bars []model.DailyBar
}

// Monthly validates, sorts and reduces bars into one MonthlyBar per calendar
// month present in the input, ascending by month. Same-date rows keep their
// input order. Months with no rows are absent from the output.
func Monthly(bars []model.DailyBar) ([]model.MonthlyBar, error) {
	for _, b := range bars {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}

	sorted := make([]model.DailyBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	buckets := groupByMonth(sorted)
	out := make([]model.MonthlyBar, 0, len(buckets))
	for _, bk := range buckets {
		out = append(out, reduce(bk))
	}
	return out, nil
}

// groupByMonth partitions chronologically sorted bars into consecutive month buckets.
func groupByMonth(sorted []model.DailyBar) []bucket {
	var buckets []bucket
	for _, b := range sorted {
		d := b.Date.UTC()
		k := monthKey{year: d.Year(), month: int(d.Month())}
		if n := len(buckets); n > 0 && buckets[n-1].key == k {
			buckets[n-1].bars = append(buckets[n-1].bars, b)
			continue
		}
		buckets = append(buckets, bucket{key: k, bars: []model.DailyBar{b}})
	}
	return buckets
}

func reduce(bk bucket) model.MonthlyBar {
	first := bk.bars[0]
	last := bk.bars[len(bk.bars)-1]
	return model.MonthlyBar{
		MonthEnd:      model.MonthEnd(first.Date),
		Open:          first.Open,
		High:          maxOf(bk.bars, func(b model.DailyBar) float64 { return b.High }),
		Low:           minOf(bk.bars, func(b model.DailyBar) float64 { return b.Low }),
		Close:         last.Close,
		Volume:        sumOf(bk.bars, func(b model.DailyBar) float64 { return b.Volume }),
		AdjustedClose: last.AdjustedClose,
	}
}

func maxOf(bars []model.DailyBar, field func(model.DailyBar) float64) float64 {
	m := math.Inf(-1)
	for _, b := range bars {
		m = math.Max(m, field(b))
	}
	return m
}

func minOf(bars []model.DailyBar, field func(model.DailyBar) float64) float64 {
	m := math.Inf(1)
	for _, b := range bars {
		m = math.Min(m, field(b))
	}
	return m
}

func sumOf(bars []model.DailyBar, field func(model.DailyBar) float64) float64 {
	var s float64
	for _, b := range bars {
		s += field(b)
	}
	return s
}
