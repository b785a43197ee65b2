package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSITrader/internal/broker"
	"RSITrader/internal/calculator"
	"RSITrader/internal/model"
)

func generateBars(basePrice float64, count int) []model.OHLCV {
	start := time.Date(2024, 5, 6, 13, 30, 0, 0, time.UTC)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * 5 * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

var params = calculator.Params{EMAPeriod: 9, RSIPeriod: 14, Seed: calculator.SeedFirst, RSIMethod: calculator.RSIRolling}

func TestCollect(t *testing.T) {
	mb := broker.NewMockBroker()
	mb.BarsBySymbol["AAPL"] = generateBars(180, 120)
	c := NewCollector(mb, model.FiveMin, 100, params)

	series, err := c.Collect(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 100, series.Len())
	latest, ok := series.Latest()
	require.True(t, ok)
	assert.Equal(t, 100.0, latest.RSI)
	assert.Greater(t, latest.Close, latest.EMA)
}

func TestCollect_NoData(t *testing.T) {
	mb := broker.NewMockBroker()
	c := NewCollector(mb, model.FiveMin, 100, params)

	_, err := c.Collect(context.Background(), "TSLA")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCollect_FetchError(t *testing.T) {
	mb := broker.NewMockBroker()
	boom := errors.New("connection refused")
	mb.BarsErr["MSFT"] = boom
	c := NewCollector(mb, model.FiveMin, 100, params)

	_, err := c.Collect(context.Background(), "MSFT")
	assert.ErrorIs(t, err, boom)
}
