package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSITrader/internal/model"
)

func barsFromCloses(closes ...float64) []model.OHLCV {
	start := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.Add(time.Duration(i) * 5 * time.Minute), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestRSI_StrictlyIncreasingIsMaximal(t *testing.T) {
	for _, method := range []RSIMethod{RSIRolling, RSIWilder} {
		t.Run(string(method), func(t *testing.T) {
			rsi, err := RSI(rising(20), 14, method)
			require.NoError(t, err)
			for i := 0; i < 14; i++ {
				assert.True(t, math.IsNaN(rsi[i]), "index %d should be undefined", i)
			}
			for i := 14; i < 20; i++ {
				assert.Equal(t, 100.0, rsi[i], "index %d", i)
			}
		})
	}
}

func TestRSI_StrictlyDecreasingIsZero(t *testing.T) {
	values := []float64{20, 19, 18, 17, 16}
	rsi, err := RSI(values, 3, RSIRolling)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rsi[3])
	assert.Equal(t, 0.0, rsi[4])
}

func TestRSI_RollingAlternating(t *testing.T) {
	rsi, err := RSI([]float64{1, 2, 1, 2, 1}, 2, RSIRolling)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, rsi[2], 1e-9)
	assert.InDelta(t, 50.0, rsi[4], 1e-9)
}

func TestRSI_WilderSmoothing(t *testing.T) {
	// period 2: seed 0.5/0.5, then a +3 move smooths to 1.75/0.25
	rsi, err := RSI([]float64{1, 2, 1, 4}, 2, RSIWilder)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, rsi[2], 1e-9)
	assert.InDelta(t, 100-100/(1+1.75/0.25), rsi[3], 1e-9)
}

func TestRSI_InsufficientData(t *testing.T) {
	rsi, err := RSI([]float64{1, 2, 3}, 14, RSIRolling)
	require.NoError(t, err)
	for _, v := range rsi {
		assert.True(t, math.IsNaN(v))
	}

	_, err = RSI(nil, 14, RSIRolling)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = RSI([]float64{1, 2}, 0, RSIRolling)
	assert.Error(t, err)
}

func TestEMA_ConstantSeries(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 42.5
	}
	ema, err := EMA(values, 9, SeedFirst)
	require.NoError(t, err)
	for i, v := range ema {
		assert.InDelta(t, 42.5, v, 1e-9, "index %d", i)
	}
}

func TestEMA_Seeds(t *testing.T) {
	ema, err := EMA([]float64{10, 20}, 3, SeedFirst)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 15}, ema)

	ema, err = EMA([]float64{1, 2, 3, 4, 5}, 3, SeedSMA)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ema[0]))
	assert.True(t, math.IsNaN(ema[1]))
	assert.InDelta(t, 2.0, ema[2], 1e-9)
	assert.InDelta(t, 3.0, ema[3], 1e-9)
	assert.InDelta(t, 4.0, ema[4], 1e-9)

	_, err = EMA([]float64{1}, 3, EMASeed("median"))
	assert.Error(t, err)
}

func TestCalculateSMA(t *testing.T) {
	sma, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, sma, 1e-9)

	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestCompute(t *testing.T) {
	params := Params{EMAPeriod: 9, RSIPeriod: 14, FastEMA: 9, SlowEMA: 21, Seed: SeedFirst, RSIMethod: RSIRolling}

	_, err := Compute("AAPL", nil, params)
	assert.ErrorIs(t, err, ErrNoData)

	series, err := Compute("AAPL", barsFromCloses(rising(15)...), params)
	require.NoError(t, err)
	assert.Equal(t, 15, series.Len())

	latest, ok := series.Latest()
	require.True(t, ok)
	assert.Equal(t, 14, latest.Index)
	assert.Equal(t, 100.0, latest.RSI)
	assert.Equal(t, 114.0, latest.Close)
	assert.False(t, math.IsNaN(latest.SlowEMA))

	_, ok = series.Previous()
	assert.False(t, ok, "index 13 has no RSI yet")
}

func TestCompute_DisabledCrossoverEMAs(t *testing.T) {
	series, err := Compute("MSFT", barsFromCloses(rising(16)...), Params{EMAPeriod: 9, RSIPeriod: 14})
	require.NoError(t, err)
	latest, ok := series.Latest()
	require.True(t, ok)
	assert.True(t, math.IsNaN(latest.FastEMA))
	assert.True(t, math.IsNaN(latest.SlowEMA))
}
