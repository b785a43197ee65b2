package trader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"RSITrader/internal/broker"
	"RSITrader/internal/model"
	"RSITrader/internal/notifier"
	"RSITrader/internal/recorder"
)

// Outcome is the result class of one submission attempt.
type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Result describes what happened to one Buy or Sell call.
type Result struct {
	Outcome Outcome
	Symbol  string
	Side    model.Side
	Qty     int64
	Price   float64
	Order   *model.Order
	Reason  string
	Err     error
}

// Options configures order shape and retry behaviour.
type Options struct {
	TimeInForce    string
	Bracket        bool
	TakeProfitPct  float64
	BracketStopPct float64
	Attempts       int // 1 means no retry
	RetryDelay     time.Duration
	TradeEmails    bool
}

// DefaultOptions are plain market day orders without retry.
var DefaultOptions = Options{
	TimeInForce:    "day",
	TakeProfitPct:  0.05,
	BracketStopPct: 0.03,
	Attempts:       1,
	RetryDelay:     5 * time.Second,
}

// Submitter turns a dollar budget into a broker order and journals it.
type Submitter struct {
	Broker   broker.Broker
	Recorder recorder.Recorder
	Notifier notifier.Notifier
	Options  Options
	Now      func() time.Time
}

// NewSubmitter creates a Submitter; nil recorder or notifier become no-ops.
func NewSubmitter(b broker.Broker, rec recorder.Recorder, n notifier.Notifier, opts Options) *Submitter {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.Noop{}
	}
	if opts.TimeInForce == "" {
		opts.TimeInForce = DefaultOptions.TimeInForce
	}
	return &Submitter{Broker: b, Recorder: rec, Notifier: n, Options: opts, Now: time.Now}
}

// Quantity is the whole number of shares budget buys at price.
func Quantity(budget, price float64) int64 {
	if price <= 0 || budget <= 0 {
		return 0
	}
	return decimal.NewFromFloat(budget).Div(decimal.NewFromFloat(price)).Floor().IntPart()
}

// BracketPrices returns the take-profit and stop-loss legs for an entry price, rounded to cents.
func BracketPrices(price, takeProfitPct, stopPct float64) (takeProfit, stopLoss float64) {
	p := decimal.NewFromFloat(price)
	one := decimal.NewFromInt(1)
	takeProfit = p.Mul(one.Add(decimal.NewFromFloat(takeProfitPct))).Round(2).InexactFloat64()
	stopLoss = p.Mul(one.Sub(decimal.NewFromFloat(stopPct))).Round(2).InexactFloat64()
	return takeProfit, stopLoss
}

// Buy spends up to budget on symbol at the latest trade price.
func (s *Submitter) Buy(ctx context.Context, symbol string, budget float64) Result {
	res := Result{Symbol: symbol, Side: model.SideBuy}

	price, err := s.Broker.LatestTradePrice(ctx, symbol)
	if err != nil {
		log.Errorf("[ORDER] %s: latest price: %v", symbol, err)
		res.Outcome, res.Err = OutcomeFailed, fmt.Errorf("latest price: %w", err)
		return res
	}
	res.Price = price

	qty := Quantity(budget, price)
	if qty < 1 {
		log.Warnf("[ORDER] %s: price %.2f too high for $%.2f", symbol, price, budget)
		res.Outcome, res.Reason = OutcomeSkipped, "too expensive"
		return res
	}
	res.Qty = qty

	req := model.OrderRequest{
		Symbol:        symbol,
		Side:          model.SideBuy,
		Qty:           qty,
		TimeInForce:   s.Options.TimeInForce,
		ClientOrderID: uuid.NewString(),
	}
	if s.Options.Bracket {
		req.TakeProfit, req.StopLoss = BracketPrices(price, s.Options.TakeProfitPct, s.Options.BracketStopPct)
	}
	return s.submit(ctx, req, res)
}

// Sell closes qty shares of symbol at market.
func (s *Submitter) Sell(ctx context.Context, symbol string, qty float64) Result {
	res := Result{Symbol: symbol, Side: model.SideSell, Qty: int64(qty)}
	if res.Qty < 1 {
		res.Outcome, res.Reason = OutcomeSkipped, "no whole shares held"
		return res
	}

	// The price only feeds the journal, so a failed lookup does not block the sell.
	if price, err := s.Broker.LatestTradePrice(ctx, symbol); err != nil {
		log.Warnf("[ORDER] %s: latest price for journal: %v", symbol, err)
	} else {
		res.Price = price
	}

	req := model.OrderRequest{
		Symbol:        symbol,
		Side:          model.SideSell,
		Qty:           res.Qty,
		TimeInForce:   s.Options.TimeInForce,
		ClientOrderID: uuid.NewString(),
	}
	return s.submit(ctx, req, res)
}

func (s *Submitter) submit(ctx context.Context, req model.OrderRequest, res Result) Result {
	attempts := s.Options.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var order *model.Order
	op := func() error {
		o, err := s.Broker.SubmitOrder(ctx, req)
		if err != nil {
			if errors.Is(err, broker.ErrRejected) || errors.Is(err, broker.ErrUnauthorized) {
				return backoff.Permanent(err)
			}
			return err
		}
		order = o
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.Options.RetryDelay), uint64(attempts-1)), ctx)
	notify := func(err error, wait time.Duration) {
		log.Warnf("[ORDER] %s %s %d failed: %v, retrying in %v", req.Side, req.Symbol, req.Qty, err, wait)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		log.Errorf("[ORDER] %s %s %d failed: %v", req.Side, req.Symbol, req.Qty, err)
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}

	res.Outcome, res.Order = OutcomeSubmitted, order
	if req.IsBracket() {
		log.Infof("[ORDER] %s %d %s @ ~%.2f submitted (TP %.2f / SL %.2f, order %s)",
			req.Side, req.Qty, req.Symbol, res.Price, req.TakeProfit, req.StopLoss, order.ID)
	} else {
		log.Infof("[ORDER] %s %d %s @ ~%.2f submitted (order %s)", req.Side, req.Qty, req.Symbol, res.Price, order.ID)
	}

	rec := &recorder.TradeRecord{
		Time:          s.Now(),
		Action:        actionFor(req.Side),
		Symbol:        req.Symbol,
		Qty:           req.Qty,
		Price:         res.Price,
		OrderID:       order.ID,
		ClientOrderID: req.ClientOrderID,
	}
	if err := s.Recorder.RecordTrade(rec); err != nil {
		log.Errorf("[LOG] record trade %s %s: %v", rec.Action, rec.Symbol, err)
	}
	if s.Options.TradeEmails {
		subject, body := notifier.FormatTrade(rec)
		if err := s.Notifier.Send(ctx, subject, body); err != nil {
			log.Errorf("[EMAIL] trade notification: %v", err)
		}
	}
	return res
}

func actionFor(side model.Side) string {
	if side == model.SideSell {
		return recorder.ActionSell
	}
	return recorder.ActionBuy
}
