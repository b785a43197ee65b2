package model

import "time"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderRequest describes a market order, optionally with bracket legs.
type OrderRequest struct {
	Symbol        string
	Side          Side
	Qty           int64
	TimeInForce   string
	ClientOrderID string

	// Bracket legs, both zero for a plain market order.
	TakeProfit float64
	StopLoss   float64
}

// IsBracket reports whether the request carries take-profit and stop-loss legs.
func (r OrderRequest) IsBracket() bool {
	return r.TakeProfit > 0 && r.StopLoss > 0
}

// Order is an order as reported by the broker.
type Order struct {
	ID             string
	ClientOrderID  string
	Symbol         string
	Side           Side
	Qty            float64
	FilledQty      float64
	FilledAvgPrice float64
	Status         string
	SubmittedAt    time.Time
	FilledAt       time.Time
}

// Position is an open holding owned by the brokerage account.
type Position struct {
	Symbol        string
	Qty           float64
	AvgEntryPrice float64
	CurrentPrice  float64
	UnrealizedPL  float64
}
