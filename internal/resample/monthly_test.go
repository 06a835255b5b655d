package resample

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monthly-ohlcv/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func bar(date time.Time, open, high, low, close, volume float64) model.DailyBar {
	return model.DailyBar{
		InstrumentID: "TEST", Date: date,
		Open: open, High: high, Low: low, Close: close,
		Volume: volume, AdjustedClose: close,
	}
}

func twoMonths() []model.DailyBar {
	return []model.DailyBar{
		bar(day(2023, time.January, 1), 10, 15, 9, 14, 100),
		bar(day(2023, time.January, 2), 12, 16, 11, 15, 100),
		bar(day(2023, time.January, 3), 14, 18, 13, 17, 100),
		bar(day(2023, time.February, 1), 20, 25, 19, 24, 200),
		bar(day(2023, time.February, 2), 22, 26, 21, 25, 200),
	}
}

func TestMonthlyOHLC(t *testing.T) {
	monthly, err := Monthly(twoMonths())
	require.NoError(t, err)
	require.Len(t, monthly, 2)

	jan := monthly[0]
	assert.Equal(t, day(2023, time.January, 31), jan.MonthEnd)
	assert.Equal(t, 10.0, jan.Open)
	assert.Equal(t, 17.0, jan.Close)
	assert.Equal(t, 18.0, jan.High)
	assert.Equal(t, 9.0, jan.Low)
	assert.Equal(t, 300.0, jan.Volume)
	assert.Equal(t, 17.0, jan.AdjustedClose)

	feb := monthly[1]
	assert.Equal(t, day(2023, time.February, 28), feb.MonthEnd)
	assert.Equal(t, 20.0, feb.Open)
	assert.Equal(t, 25.0, feb.Close)
	assert.Equal(t, 26.0, feb.High)
	assert.Equal(t, 19.0, feb.Low)
	assert.Equal(t, 400.0, feb.Volume)
}

func TestMonthlySortsInput(t *testing.T) {
	in := twoMonths()
	shuffled := []model.DailyBar{in[4], in[1], in[3], in[0], in[2]}
	snapshot := append([]model.DailyBar(nil), shuffled...)

	got, err := Monthly(shuffled)
	require.NoError(t, err)
	want, err := Monthly(in)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unsorted input mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(snapshot, shuffled); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestMonthlySkipsEmptyMonths(t *testing.T) {
	in := []model.DailyBar{
		bar(day(2023, time.January, 15), 1, 1, 1, 1, 1),
		bar(day(2023, time.April, 3), 2, 2, 2, 2, 2),
	}
	got, err := Monthly(in)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(2023, time.January, 31), got[0].MonthEnd)
	assert.Equal(t, day(2023, time.April, 30), got[1].MonthEnd)
}

func TestMonthlyYearBoundary(t *testing.T) {
	in := []model.DailyBar{
		bar(day(2024, time.January, 2), 5, 6, 4, 5, 1),
		bar(day(2023, time.December, 29), 3, 4, 2, 3, 1),
	}
	got, err := Monthly(in)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(2023, time.December, 31), got[0].MonthEnd)
	assert.Equal(t, day(2024, time.January, 31), got[1].MonthEnd)
}

func TestMonthlySameDateKeepsInputOrder(t *testing.T) {
	in := []model.DailyBar{
		bar(day(2023, time.March, 1), 7, 8, 6, 7.5, 10),
		bar(day(2023, time.March, 1), 9, 9, 9, 9, 10),
	}
	got, err := Monthly(in)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7.0, got[0].Open)
	assert.Equal(t, 9.0, got[0].Close)
	assert.Equal(t, 20.0, got[0].Volume)
}

func TestMonthlyIdempotent(t *testing.T) {
	first, err := Monthly(twoMonths())
	require.NoError(t, err)

	again := make([]model.DailyBar, len(first))
	for i, m := range first {
		again[i] = model.DailyBar{
			InstrumentID: "TEST", Date: m.MonthEnd,
			Open: m.Open, High: m.High, Low: m.Low, Close: m.Close,
			Volume: m.Volume, AdjustedClose: m.AdjustedClose,
		}
	}
	second, err := Monthly(again)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("resampling monthly bars changed them (-first +second):\n%s", diff)
	}
}

func TestMonthlyEmpty(t *testing.T) {
	got, err := Monthly(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMonthlyMalformed(t *testing.T) {
	in := twoMonths()
	in[2].High = math.NaN()
	got, err := Monthly(in)
	require.ErrorIs(t, err, model.ErrMalformedInput)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "field high")
	assert.Contains(t, err.Error(), "instrument TEST")
}
