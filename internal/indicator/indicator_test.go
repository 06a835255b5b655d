package indicator

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"monthly-ohlcv/internal/model"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) value(o optional.Option[float64]) float64 {
	suite.T().Helper()
	v, err := o.Take()
	suite.Require().NoError(err)
	return v
}

func (suite *IndicatorTestSuite) TestSMABoundary() {
	sma := SMA([]float64{10, 20, 30, 40, 50}, 5)
	suite.Require().Len(sma, 5)
	for i := 0; i < 4; i++ {
		suite.True(sma[i].IsNone(), "index %d should be undefined", i)
	}
	suite.Equal(30.0, suite.value(sma[4]))
}

func (suite *IndicatorTestSuite) TestSMATrailingWindow() {
	sma := SMA([]float64{100, 102, 104, 103, 105}, 3)
	suite.True(sma[0].IsNone())
	suite.True(sma[1].IsNone())
	suite.InDelta(102.0, suite.value(sma[2]), 1e-12)
	suite.InDelta(103.0, suite.value(sma[3]), 1e-12)
	suite.InDelta(104.0, suite.value(sma[4]), 1e-12)
}

func (suite *IndicatorTestSuite) TestEMASeedUsesCoIndexedSMA() {
	ema := EMA([]float64{10, 20, 30, 40, 50}, 5)
	suite.Require().Len(ema, 5)
	for i := 0; i < 4; i++ {
		suite.True(ema[i].IsNone(), "index %d should be undefined", i)
	}
	alpha := 2.0 / 6.0
	suite.Equal((50-30)*alpha+30, suite.value(ema[4]))
	// the textbook seed would be the plain SMA
	suite.NotEqual(30.0, suite.value(ema[4]))
}

func (suite *IndicatorTestSuite) TestEMARecursion() {
	ema := EMA([]float64{10, 20, 30, 40, 50, 60}, 5)
	alpha := 2.0 / 6.0
	first := (50-30)*alpha + 30
	second := (60-first)*alpha + first
	suite.Equal(first, suite.value(ema[4]))
	suite.Equal(second, suite.value(ema[5]))
}

func (suite *IndicatorTestSuite) TestWindowOfOne() {
	series := []float64{3, 5, 8}
	sma := SMA(series, 1)
	ema := EMA(series, 1)
	for i, v := range series {
		suite.Equal(v, suite.value(sma[i]))
		suite.Equal(v, suite.value(ema[i]))
	}
}

func (suite *IndicatorTestSuite) TestShortSeriesIsUndefined() {
	for n := 0; n < LongWindow; n++ {
		series := make([]float64, n)
		for i := range series {
			series[i] = float64(i + 1)
		}
		for _, w := range []int{n + 1, LongWindow} {
			sma := SMA(series, w)
			ema := EMA(series, w)
			suite.Len(sma, n)
			suite.Len(ema, n)
			for i := 0; i < n; i++ {
				suite.True(sma[i].IsNone())
				suite.True(ema[i].IsNone())
			}
		}
	}
}

func (suite *IndicatorTestSuite) TestNonPositiveWindow() {
	suite.True(SMA([]float64{1, 2}, 0)[1].IsNone())
	suite.True(EMA([]float64{1, 2}, -1)[1].IsNone())
}

func monthlyBars(closes ...float64) []model.MonthlyBar {
	bars := make([]model.MonthlyBar, len(closes))
	for i, c := range closes {
		bars[i] = model.MonthlyBar{
			MonthEnd: model.MonthEnd(time.Date(2022, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC)),
			Open:     c, High: c, Low: c, Close: c, Volume: 1, AdjustedClose: c,
		}
	}
	return bars
}

func (suite *IndicatorTestSuite) TestAddIndicators() {
	closes := make([]float64, 24)
	for i := range closes {
		closes[i] = 100 + float64(i)*1.5
	}
	bars := monthlyBars(closes...)
	rows := AddIndicators("AAPL", bars)
	suite.Require().Len(rows, 24)

	sma10, sma20 := SMA(closes, 10), SMA(closes, 20)
	ema10, ema20 := EMA(closes, 10), EMA(closes, 20)
	for i, r := range rows {
		suite.Equal("AAPL", r.InstrumentID)
		suite.Equal(bars[i], r.MonthlyBar)
		suite.Equal(sma10[i], r.SMA10)
		suite.Equal(sma20[i], r.SMA20)
		suite.Equal(ema10[i], r.EMA10)
		suite.Equal(ema20[i], r.EMA20)
	}
	suite.True(rows[8].SMA10.IsNone())
	suite.True(rows[9].SMA10.IsSome())
	suite.True(rows[18].EMA20.IsNone())
	suite.True(rows[19].EMA20.IsSome())
}

func (suite *IndicatorTestSuite) TestWindowsAreIndependent() {
	closes := []float64{5, 7, 6, 9, 11, 10, 12, 15, 14, 13, 16, 18}
	rows := AddIndicators("X", monthlyBars(closes...))

	var gotSMA, gotEMA []optional.Option[float64]
	for _, r := range rows {
		gotSMA = append(gotSMA, r.SMA10)
		gotEMA = append(gotEMA, r.EMA10)
		suite.True(r.SMA20.IsNone())
		suite.True(r.EMA20.IsNone())
	}
	if diff := cmp.Diff(SMA(closes, 10), gotSMA); diff != "" {
		suite.Failf("sma_10 differs", "(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(EMA(closes, 10), gotEMA); diff != "" {
		suite.Failf("ema_10 differs", "(-want +got):\n%s", diff)
	}
}

func (suite *IndicatorTestSuite) TestColumnNames() {
	suite.Equal("sma_10", ColumnSMAShort)
	suite.Equal("sma_20", ColumnSMALong)
	suite.Equal("ema_10", ColumnEMAShort)
	suite.Equal("ema_20", ColumnEMALong)
}

func (suite *IndicatorTestSuite) TestEmptyBars() {
	suite.Empty(AddIndicators("X", nil))
}
