package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"RSITrader/internal/model"
)

// EMASeed selects how the first EMA value is produced.
type EMASeed string

const (
	// SeedFirst starts the EMA at the first observation; every index is defined.
	SeedFirst EMASeed = "first"
	// SeedSMA starts the EMA at the simple mean of the first span values.
	SeedSMA EMASeed = "sma"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	mean, err := stats.Mean(prices[len(prices)-period:])
	if err != nil {
		return 0, fmt.Errorf("sma: %w", err)
	}
	return mean, nil
}

// EMA returns the exponential moving average of values with smoothing factor 2/(span+1).
// Indices before the seed are NaN.
func EMA(values []float64, span int, seed EMASeed) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}

	alpha := 2.0 / float64(span+1)
	start := 0
	switch seed {
	case SeedSMA:
		if len(values) < span {
			return out, nil
		}
		start = span - 1
		mean, err := stats.Mean(values[:span])
		if err != nil {
			return nil, fmt.Errorf("ema seed: %w", err)
		}
		out[start] = mean
	case SeedFirst, "":
		out[0] = values[0]
	default:
		return nil, fmt.Errorf("unknown ema seed %q", seed)
	}

	for i := start + 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out, nil
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
