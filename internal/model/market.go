package model

import (
	"math"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IndicatorPoint is the indicator state at one bar index.
type IndicatorPoint struct {
	Index   int
	Time    time.Time
	Close   float64
	EMA     float64
	FastEMA float64 // NaN when undefined
	SlowEMA float64 // NaN when undefined
	RSI     float64
}

// IndicatorSeries holds per-bar indicator values for one symbol.
// Undefined values are NaN; they are never reported as zero.
type IndicatorSeries struct {
	Symbol  string
	Bars    []OHLCV
	EMA     []float64
	FastEMA []float64
	SlowEMA []float64
	RSI     []float64
}

// Len returns the number of bars in the series.
func (s *IndicatorSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Point returns the point at index i. ok is false when EMA or RSI is undefined there.
func (s *IndicatorSeries) Point(i int) (IndicatorPoint, bool) {
	if s == nil || i < 0 || i >= len(s.Bars) || i >= len(s.EMA) || i >= len(s.RSI) {
		return IndicatorPoint{}, false
	}
	p := IndicatorPoint{
		Index:   i,
		Time:    s.Bars[i].Time,
		Close:   s.Bars[i].Close,
		EMA:     s.EMA[i],
		RSI:     s.RSI[i],
		FastEMA: valueAt(s.FastEMA, i),
		SlowEMA: valueAt(s.SlowEMA, i),
	}
	if math.IsNaN(p.EMA) || math.IsNaN(p.RSI) {
		return IndicatorPoint{}, false
	}
	return p, true
}

// Latest returns the newest bar's point.
func (s *IndicatorSeries) Latest() (IndicatorPoint, bool) {
	return s.Point(s.Len() - 1)
}

// Previous returns the point immediately before the newest bar.
func (s *IndicatorSeries) Previous() (IndicatorPoint, bool) {
	return s.Point(s.Len() - 2)
}

func valueAt(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return math.NaN()
	}
	return values[i]
}
