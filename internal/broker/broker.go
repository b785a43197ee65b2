package broker

import (
	"context"
	"errors"
	"time"

	"RSITrader/internal/model"
)

var (
	// ErrUnauthorized means the credentials were refused; retrying will not help.
	ErrUnauthorized = errors.New("broker: unauthorized")
	// ErrRejected means the broker refused the request itself (4xx other than auth).
	ErrRejected = errors.New("broker: request rejected")
)

// Broker is the brokerage collaborator: market data, orders and account state.
type Broker interface {
	Bars(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.OHLCV, error)
	LatestTradePrice(ctx context.Context, symbol string) (float64, error)
	SubmitOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error)
	Positions(ctx context.Context) ([]model.Position, error)
	FilledOrders(ctx context.Context, since time.Time) ([]model.Order, error)
	AccountEquity(ctx context.Context) (float64, error)
	Name() string
}

// PositionsBySymbol indexes positions by symbol.
func PositionsBySymbol(positions []model.Position) map[string]model.Position {
	out := make(map[string]model.Position, len(positions))
	for _, p := range positions {
		out[p.Symbol] = p
	}
	return out
}
