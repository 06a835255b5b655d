package pipeline

import (
	"context"
	"fmt"
	"io"
	"testing"

	"monthly-ohlcv/internal/indicator"
	"monthly-ohlcv/internal/model"
	"monthly-ohlcv/internal/resample"
	"monthly-ohlcv/internal/saver"
)

const (
	benchInstruments = 50
	benchMonths      = 24
)

// nopSaver drops rows so the benchmark measures load, resample and indicators only.
type nopSaver struct{}

func (nopSaver) Extension() string { return "nop" }

func (nopSaver) Save(rows []model.IndicatorRow, path string) error { return nil }

func benchSource() *memorySource {
	months := make(map[string]int, benchInstruments)
	for i := 0; i < benchInstruments; i++ {
		months[fmt.Sprintf("T%03d", i)] = benchMonths
	}
	return newSource(months)
}

// BenchmarkResampleAndIndicators: one instrument, two years of daily bars
func BenchmarkResampleAndIndicators(b *testing.B) {
	daily := dailyHistory("AAA", benchMonths)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		monthly, err := resample.Monthly(daily)
		if err != nil {
			b.Fatal(err)
		}
		_ = indicator.AddIndicators("AAA", monthly)
	}
}

func benchmarkRun(b *testing.B, workers int, s saver.RowSaver) {
	src := benchSource()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		opts := Options{OutputDir: b.TempDir(), Workers: workers, LogOutput: io.Discard}
		if _, err := Run(context.Background(), opts, src, s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRun_1Worker(b *testing.B)  { benchmarkRun(b, 1, nopSaver{}) }
func BenchmarkRun_4Workers(b *testing.B) { benchmarkRun(b, 4, nopSaver{}) }
func BenchmarkRun_CSV(b *testing.B)      { benchmarkRun(b, 4, saver.CSVSaver{}) }
