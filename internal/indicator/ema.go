package indicator

import "github.com/moznion/go-optional"

// EMA returns the exponential moving average of series with alpha = 2/(w+1).
//
// The first value sits at start = w-1 and is seeded from the SMA at the same
// index: ema[start] = (series[start] - sma[start])*alpha + sma[start].
// Every later value folds the previous one:
// ema[i] = (series[i] - ema[i-1])*alpha + ema[i-1].
// This seed is intentional and differs from the textbook EMA.
func EMA(series []float64, w int) []optional.Option[float64] {
	out := undefined(len(series))
	if w <= 0 || len(series) < w {
		return out
	}

	alpha := 2 / float64(w+1)
	start := w - 1

	sma := windowMean(series, start, w)
	prev := (series[start]-sma)*alpha + sma
	out[start] = optional.Some(prev)

	for i := start + 1; i < len(series); i++ {
		prev = (series[i]-prev)*alpha + prev
		out[i] = optional.Some(prev)
	}
	return out
}
