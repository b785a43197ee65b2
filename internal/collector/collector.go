package collector

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"RSITrader/internal/broker"
	"RSITrader/internal/calculator"
	"RSITrader/internal/model"
)

// ErrNoData is returned when the broker has no bars for a symbol.
var ErrNoData = errors.New("no bars returned")

// Collector orchestrates bar fetching and indicator computation.
type Collector struct {
	Broker    broker.Broker
	Timeframe model.Timeframe
	Limit     int
	Params    calculator.Params
}

// NewCollector creates a new Collector.
func NewCollector(b broker.Broker, tf model.Timeframe, limit int, params calculator.Params) *Collector {
	return &Collector{Broker: b, Timeframe: tf, Limit: limit, Params: params}
}

// Collect fetches recent bars for symbol and computes the indicator series.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.IndicatorSeries, error) {
	bars, err := c.Broker.Bars(ctx, symbol, c.Timeframe, c.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	series, err := calculator.Compute(symbol, bars, c.Params)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}
	if latest, ok := series.Latest(); ok {
		log.Debugf("[DATA] %s close=%.2f ema=%.2f rsi=%.1f (%d bars)", symbol, latest.Close, latest.EMA, latest.RSI, len(bars))
	} else {
		log.Debugf("[DATA] %s: %d bars, not enough for indicators", symbol, len(bars))
	}
	return series, nil
}
