// Package indicator computes trailing moving averages over an ordered series.
// Positions without a full trailing window are optional.None.
package indicator

import "github.com/moznion/go-optional"

// SMA returns the simple moving average of series over a strict trailing
// window of w. sma[i] is the mean of series[i-w+1..i] for i >= w-1.
func SMA(series []float64, w int) []optional.Option[float64] {
	out := undefined(len(series))
	if w <= 0 {
		return out
	}
	for i := w - 1; i < len(series); i++ {
		out[i] = optional.Some(windowMean(series, i, w))
	}
	return out
}

// windowMean is the mean of the w values ending at index end.
func windowMean(series []float64, end, w int) float64 {
	var sum float64
	for _, v := range series[end-w+1 : end+1] {
		sum += v
	}
	return sum / float64(w)
}

func undefined(n int) []optional.Option[float64] {
	out := make([]optional.Option[float64], n)
	for i := range out {
		out[i] = optional.None[float64]()
	}
	return out
}
