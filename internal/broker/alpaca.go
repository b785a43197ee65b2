package broker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"RSITrader/internal/model"
)

const (
	PaperTradingURL = "https://paper-api.alpaca.markets"
	LiveTradingURL  = "https://api.alpaca.markets"
)

// AlpacaOptions configures the Alpaca clients.
type AlpacaOptions struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Feed      string // "iex" or "sip"
}

// AlpacaBroker implements Broker on top of the Alpaca trading and market data APIs.
type AlpacaBroker struct {
	trading *alpaca.Client
	data    *marketdata.Client
	feed    marketdata.Feed
}

// NewAlpacaBroker creates the trading and market data clients.
func NewAlpacaBroker(opts AlpacaOptions) *AlpacaBroker {
	if opts.BaseURL == "" {
		opts.BaseURL = PaperTradingURL
	}
	feed := marketdata.IEX
	if opts.Feed != "" {
		feed = marketdata.Feed(opts.Feed)
	}
	return &AlpacaBroker{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    opts.APIKey,
			APISecret: opts.APISecret,
			BaseURL:   opts.BaseURL,
		}),
		data: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    opts.APIKey,
			APISecret: opts.APISecret,
		}),
		feed: feed,
	}
}

func (b *AlpacaBroker) Name() string { return "alpaca" }

// ParseTimeframe converts a model timeframe to Alpaca's TimeFrame type.
func ParseTimeframe(tf model.Timeframe) (marketdata.TimeFrame, error) {
	switch tf {
	case model.OneMin:
		return marketdata.OneMin, nil
	case model.FiveMin:
		return marketdata.NewTimeFrame(5, marketdata.Min), nil
	case model.FifteenMin:
		return marketdata.NewTimeFrame(15, marketdata.Min), nil
	case model.OneHour:
		return marketdata.OneHour, nil
	case model.OneDay:
		return marketdata.OneDay, nil
	default:
		return marketdata.TimeFrame{}, fmt.Errorf("unrecognized timeframe %q", string(tf))
	}
}

// Bars returns up to limit of the most recent bars, oldest first.
func (b *AlpacaBroker) Bars(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeframe, err := ParseTimeframe(tf)
	if err != nil {
		return nil, err
	}
	step, _ := tf.Duration()

	// Sessions are ~6.5h and weekends are closed, so look back generously and trim.
	window := time.Duration(limit) * step * 4
	if window < 5*24*time.Hour {
		window = 5 * 24 * time.Hour
	}
	now := time.Now()
	bars, err := b.data.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: timeframe,
		Start:     now.Add(-window),
		End:       now,
		Feed:      b.feed,
	})
	if err != nil {
		return nil, classify(fmt.Errorf("get bars %s: %w", symbol, err))
	}
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	out := make([]model.OHLCV, len(bars))
	for i, bar := range bars {
		out[i] = model.OHLCV{
			Time:   bar.Timestamp,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: float64(bar.Volume),
		}
	}
	return out, nil
}

// LatestTradePrice returns the price of the most recent trade.
func (b *AlpacaBroker) LatestTradePrice(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	trade, err := b.data.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{Feed: b.feed})
	if err != nil {
		return 0, classify(fmt.Errorf("get latest trade %s: %w", symbol, err))
	}
	if trade == nil || trade.Price <= 0 {
		return 0, fmt.Errorf("invalid latest trade price for %s", symbol)
	}
	return trade.Price, nil
}

// SubmitOrder places a market order, attaching bracket legs when requested.
func (b *AlpacaBroker) SubmitOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	qty := decimal.NewFromInt(req.Qty)
	r := alpaca.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Qty:           &qty,
		Side:          alpaca.Side(req.Side),
		Type:          alpaca.Market,
		TimeInForce:   alpaca.TimeInForce(req.TimeInForce),
		ClientOrderID: req.ClientOrderID,
	}
	if req.IsBracket() {
		tp := decimal.NewFromFloat(req.TakeProfit).Round(2)
		sl := decimal.NewFromFloat(req.StopLoss).Round(2)
		r.OrderClass = alpaca.Bracket
		r.TakeProfit = &alpaca.TakeProfit{LimitPrice: &tp}
		r.StopLoss = &alpaca.StopLoss{StopPrice: &sl}
	}

	order, err := b.trading.PlaceOrder(r)
	if err != nil {
		return nil, classify(fmt.Errorf("place %s order %s: %w", req.Side, req.Symbol, err))
	}
	o := toOrder(order)
	return &o, nil
}

// Positions lists open positions.
func (b *AlpacaBroker) Positions(ctx context.Context) ([]model.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	positions, err := b.trading.GetPositions()
	if err != nil {
		return nil, classify(fmt.Errorf("get positions: %w", err))
	}
	out := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		out = append(out, model.Position{
			Symbol:        p.Symbol,
			Qty:           p.Qty.InexactFloat64(),
			AvgEntryPrice: p.AvgEntryPrice.InexactFloat64(),
			CurrentPrice:  decFloat(p.CurrentPrice),
			UnrealizedPL:  decFloat(p.UnrealizedPL),
		})
	}
	return out, nil
}

// FilledOrders lists orders filled since the given time.
func (b *AlpacaBroker) FilledOrders(ctx context.Context, since time.Time) ([]model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	orders, err := b.trading.GetOrders(alpaca.GetOrdersRequest{
		Status:    "closed",
		After:     since,
		Limit:     500,
		Direction: "asc",
	})
	if err != nil {
		return nil, classify(fmt.Errorf("get orders: %w", err))
	}
	var out []model.Order
	for i := range orders {
		if orders[i].Status != "filled" {
			continue
		}
		out = append(out, toOrder(&orders[i]))
	}
	return out, nil
}

// AccountEquity returns the account's current equity.
func (b *AlpacaBroker) AccountEquity(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	acct, err := b.trading.GetAccount()
	if err != nil {
		return 0, classify(fmt.Errorf("get account: %w", err))
	}
	return acct.Equity.InexactFloat64(), nil
}

func toOrder(o *alpaca.Order) model.Order {
	out := model.Order{
		ID:             o.ID,
		ClientOrderID:  o.ClientOrderID,
		Symbol:         o.Symbol,
		Side:           model.Side(o.Side),
		Qty:            decFloat(o.Qty),
		FilledQty:      o.FilledQty.InexactFloat64(),
		FilledAvgPrice: decFloat(o.FilledAvgPrice),
		Status:         o.Status,
		SubmittedAt:    o.SubmittedAt,
	}
	if o.FilledAt != nil {
		out.FilledAt = *o.FilledAt
	}
	return out
}

func decFloat(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	return d.InexactFloat64()
}

// classify maps Alpaca API status codes onto the package sentinels.
func classify(err error) error {
	var apiErr *alpaca.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return err
}
