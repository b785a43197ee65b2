package strategy

import (
	"fmt"

	"RSITrader/internal/model"
)

// Engine evaluates buy and sell signals over an indicator series.
type Engine struct {
	Mode       model.BuyMode
	Thresholds Thresholds
}

// NewEngine creates an Engine; an empty mode means the simple buy condition.
func NewEngine(mode model.BuyMode, th Thresholds) *Engine {
	if mode == "" {
		mode = model.BuyModeSimple
	}
	return &Engine{Mode: mode, Thresholds: th}
}

// Evaluate computes the signal for the newest bar. position may be nil when nothing is held.
// Missing data never raises; it simply yields no signal.
func (e *Engine) Evaluate(series *model.IndicatorSeries, position *model.Position) *model.Signal {
	latest, ok := series.Latest()
	if !ok {
		return &model.Signal{}
	}
	sig := &model.Signal{Point: latest}

	switch e.Mode {
	case model.BuyModeCrossover:
		if prev, ok := series.Previous(); ok && BuyCrossover(prev, latest, e.Thresholds) {
			sig.Buy = true
			sig.BuyReason = fmt.Sprintf("EMA cross up, RSI %.1f crossed %.0f", latest.RSI, e.Thresholds.RSICrossLevel)
		}
	default:
		if BuySimple(latest, e.Thresholds) {
			sig.Buy = true
			sig.BuyReason = fmt.Sprintf("RSI %.1f < %.0f and close %.2f > EMA %.2f",
				latest.RSI, e.Thresholds.RSIBuy, latest.Close, latest.EMA)
		}
	}

	if position != nil && position.Qty > 0 && Sell(latest, position.AvgEntryPrice, e.Thresholds) {
		sig.Sell = true
		if latest.RSI > e.Thresholds.RSISell {
			sig.SellReason = fmt.Sprintf("RSI %.1f > %.0f", latest.RSI, e.Thresholds.RSISell)
		} else {
			sig.SellReason = fmt.Sprintf("close %.2f below stop %.2f", latest.Close, StopPrice(position.AvgEntryPrice, e.Thresholds))
		}
	}
	return sig
}
