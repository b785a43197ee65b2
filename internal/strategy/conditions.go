package strategy

import (
	"math"

	"RSITrader/internal/model"
)

// Thresholds are the configurable comparison levels.
type Thresholds struct {
	RSIBuy        float64
	RSISell       float64
	StopLossPct   float64
	RSICrossLevel float64
}

// DefaultThresholds mirrors the values the bot ships with.
var DefaultThresholds = Thresholds{
	RSIBuy:        35,
	RSISell:       70,
	StopLossPct:   0.03,
	RSICrossLevel: 30,
}

// BuySimple fires when the market is oversold but trading above its EMA.
func BuySimple(latest model.IndicatorPoint, th Thresholds) bool {
	if !defined(latest.RSI, latest.Close, latest.EMA) {
		return false
	}
	return latest.RSI < th.RSIBuy && latest.Close > latest.EMA
}

// BuyCrossover fires when the fast EMA crosses above the slow EMA and RSI crosses
// above the cross level between prev and latest.
func BuyCrossover(prev, latest model.IndicatorPoint, th Thresholds) bool {
	if !defined(prev.FastEMA, prev.SlowEMA, prev.RSI, latest.FastEMA, latest.SlowEMA, latest.RSI) {
		return false
	}
	emaCross := prev.FastEMA <= prev.SlowEMA && latest.FastEMA > latest.SlowEMA
	rsiCross := prev.RSI <= th.RSICrossLevel && latest.RSI > th.RSICrossLevel
	return emaCross && rsiCross
}

// StopPrice is the close below which a position is cut.
func StopPrice(entryPrice float64, th Thresholds) float64 {
	return entryPrice * (1 - th.StopLossPct)
}

// Sell fires when the market is overbought or the close breaks the stop.
func Sell(latest model.IndicatorPoint, entryPrice float64, th Thresholds) bool {
	if !defined(latest.RSI, latest.Close) || entryPrice <= 0 || math.IsNaN(entryPrice) {
		return false
	}
	return latest.RSI > th.RSISell || latest.Close < StopPrice(entryPrice, th)
}

func defined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
