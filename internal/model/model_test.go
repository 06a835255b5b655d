package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{day(2023, time.January, 1), day(2023, time.January, 31)},
		{day(2024, time.February, 10), day(2024, time.February, 29)},
		{day(2023, time.February, 28), day(2023, time.February, 28)},
		{day(2023, time.December, 31), day(2023, time.December, 31)},
		{time.Date(2023, time.April, 30, 23, 59, 0, 0, time.UTC), day(2023, time.April, 30)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthEnd(tt.in), "MonthEnd(%s)", tt.in)
	}
}

func TestDailyBarValidate(t *testing.T) {
	ok := DailyBar{InstrumentID: "AAPL", Date: day(2023, 1, 3), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, AdjustedClose: 1.5}
	require.NoError(t, ok.Validate())

	t.Run("missing instrument", func(t *testing.T) {
		b := ok
		b.InstrumentID = ""
		err := b.Validate()
		require.ErrorIs(t, err, ErrMalformedInput)
		var me *MalformedInputError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, "ticker", me.Field)
	})

	t.Run("missing date", func(t *testing.T) {
		b := ok
		b.Date = time.Time{}
		err := b.Validate()
		require.ErrorIs(t, err, ErrMalformedInput)
		var me *MalformedInputError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, "date", me.Field)
		assert.Equal(t, "AAPL", me.InstrumentID)
	})

	t.Run("nan close", func(t *testing.T) {
		b := ok
		b.Close = math.NaN()
		err := b.Validate()
		require.ErrorIs(t, err, ErrMalformedInput)
		var me *MalformedInputError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, "close", me.Field)
	})

	t.Run("infinite volume", func(t *testing.T) {
		b := ok
		b.Volume = math.Inf(1)
		err := b.Validate()
		var me *MalformedInputError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, "volume", me.Field)
	})
}

func TestMalformedInputErrorMessage(t *testing.T) {
	err := &MalformedInputError{InstrumentID: "MSFT", Field: "close", Value: "abc", Line: 7, Err: errors.New("invalid syntax")}
	assert.Equal(t, `malformed input: instrument MSFT line 7 field close value "abc": invalid syntax`, err.Error())
}

func TestBarToDailyBar(t *testing.T) {
	b := Bar{
		Timestamp: time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC).UnixMilli(),
		Open:      10, High: 12, Low: 9, Close: 11, Volume: 500,
	}
	d := b.ToDailyBar("IBM")
	assert.Equal(t, "IBM", d.InstrumentID)
	assert.Equal(t, day(2024, time.March, 5), d.Date)
	assert.Equal(t, 11.0, d.AdjustedClose)
	assert.Equal(t, 500.0, d.Volume)
	require.NoError(t, d.Validate())
}

func TestNewValidatorRegistersFinite(t *testing.T) {
	v, err := newValidator()
	require.NoError(t, err)
	require.NotNil(t, v)

	type sample struct {
		X float64 `json:"x" validate:"finite"`
	}
	require.NoError(t, v.Struct(sample{X: 1}))
	require.Error(t, v.Struct(sample{X: math.Inf(1)}))
	assert.Panics(t, func() { mustValidator(nil, errors.New("boom")) })
}
