package calculator

import (
	"errors"
	"fmt"
	"math"

	"RSITrader/internal/model"
)

// ErrNoData is returned when an indicator is asked to work on an empty input.
var ErrNoData = errors.New("no data")

// Params configures the indicator series.
type Params struct {
	EMAPeriod int
	RSIPeriod int
	FastEMA   int // 0 disables
	SlowEMA   int // 0 disables
	Seed      EMASeed
	RSIMethod RSIMethod
}

// Compute builds the indicator series for bars ordered oldest to newest.
func Compute(symbol string, bars []model.OHLCV, p Params) (*model.IndicatorSeries, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	closes := extractCloses(bars)

	ema, err := EMA(closes, p.EMAPeriod, p.Seed)
	if err != nil {
		return nil, fmt.Errorf("ema(%d): %w", p.EMAPeriod, err)
	}
	rsi, err := RSI(closes, p.RSIPeriod, p.RSIMethod)
	if err != nil {
		return nil, fmt.Errorf("rsi(%d): %w", p.RSIPeriod, err)
	}
	fast, err := optionalEMA(closes, p.FastEMA, p.Seed)
	if err != nil {
		return nil, fmt.Errorf("fast ema(%d): %w", p.FastEMA, err)
	}
	slow, err := optionalEMA(closes, p.SlowEMA, p.Seed)
	if err != nil {
		return nil, fmt.Errorf("slow ema(%d): %w", p.SlowEMA, err)
	}

	return &model.IndicatorSeries{
		Symbol:  symbol,
		Bars:    bars,
		EMA:     ema,
		FastEMA: fast,
		SlowEMA: slow,
		RSI:     rsi,
	}, nil
}

func optionalEMA(closes []float64, span int, seed EMASeed) ([]float64, error) {
	if span <= 0 {
		out := make([]float64, len(closes))
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}
	return EMA(closes, span, seed)
}
