package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus metrics of one run on a private registry.
type metrics struct {
	registry    *prometheus.Registry
	instruments *prometheus.CounterVec // labels: status=ok|failed|malformed|aborted|skipped
	dailyRows   prometheus.Counter
	monthlyRows prometheus.Counter
	duration    prometheus.Histogram
	lastRun     prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		instruments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monthly_ohlcv_instruments_total",
			Help: "Instruments processed, by outcome",
		}, []string{"status"}),
		dailyRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monthly_ohlcv_daily_rows_total",
			Help: "Daily rows read from the source",
		}),
		monthlyRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "monthly_ohlcv_monthly_rows_total",
			Help: "Monthly rows written",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "monthly_ohlcv_instrument_seconds",
			Help:    "Time to load, resample, annotate and save one instrument",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monthly_ohlcv_last_run_timestamp_seconds",
			Help: "Unix time the metrics snapshot was written",
		}),
	}
	m.registry.MustRegister(m.instruments, m.dailyRows, m.monthlyRows, m.duration, m.lastRun)
	return m
}

func (m *metrics) observe(r JobResult) {
	status := "ok"
	switch {
	case r.Skipped:
		status = "skipped"
	case r.Abort:
		status = "aborted"
	case r.Malformed:
		status = "malformed"
	case !r.Ok:
		status = "failed"
	}
	m.instruments.WithLabelValues(status).Inc()
	m.dailyRows.Add(float64(r.DailyRows))
	if r.Ok {
		m.monthlyRows.Add(float64(r.Months))
	}
	m.duration.Observe(r.Duration.Seconds())
}

// writeTextfile writes the registry in the node-exporter textfile format.
func (m *metrics) writeTextfile(path string) error {
	m.lastRun.Set(float64(time.Now().Unix()))
	return prometheus.WriteToTextfile(path, m.registry)
}
