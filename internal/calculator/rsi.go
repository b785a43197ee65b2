package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// RSIMethod selects how average gains and losses are smoothed.
type RSIMethod string

const (
	// RSIRolling uses the simple rolling mean of the last period deltas.
	RSIRolling RSIMethod = "rolling"
	// RSIWilder seeds with the simple mean, then applies Wilder smoothing.
	RSIWilder RSIMethod = "wilder"
)

// RSI computes the relative strength index for every index >= period.
// Earlier indices are NaN. When the average loss is zero the RSI is 100.
func RSI(values []float64, period int, method RSIMethod) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) < period+1 {
		return out, nil
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	switch method {
	case RSIRolling, "":
		for i := period; i < len(values); i++ {
			avgGain, err := stats.Mean(gains[i-period+1 : i+1])
			if err != nil {
				return nil, fmt.Errorf("rsi gains: %w", err)
			}
			avgLoss, err := stats.Mean(losses[i-period+1 : i+1])
			if err != nil {
				return nil, fmt.Errorf("rsi losses: %w", err)
			}
			out[i] = rsiFromAverages(avgGain, avgLoss)
		}
	case RSIWilder:
		var avgGain, avgLoss float64
		for i := 1; i <= period; i++ {
			avgGain += gains[i]
			avgLoss += losses[i]
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)
		out[period] = rsiFromAverages(avgGain, avgLoss)

		for i := period + 1; i < len(values); i++ {
			avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
			out[i] = rsiFromAverages(avgGain, avgLoss)
		}
	default:
		return nil, fmt.Errorf("unknown rsi method %q", method)
	}
	return out, nil
}

// rsiFromAverages maps average gain/loss to 0..100; no losses means maximal strength.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
