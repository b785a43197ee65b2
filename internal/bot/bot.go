package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"RSITrader/internal/broker"
	"RSITrader/internal/collector"
	"RSITrader/internal/model"
	"RSITrader/internal/notifier"
	"RSITrader/internal/recorder"
	"RSITrader/internal/state"
	"RSITrader/internal/strategy"
	"RSITrader/internal/trader"
)

// SummaryMode selects what the daily summary lists.
type SummaryMode string

const (
	SummaryOrders    SummaryMode = "orders"
	SummaryPositions SummaryMode = "positions"
)

// Options configures the polling loop.
type Options struct {
	Symbols         []string
	MaxTradeDollars float64
	MaxTradesPerDay int // 0 means unlimited
	ManageSells     bool
	LogPositions    bool
	SummaryHour     int
	SummaryMode     SummaryMode
	Interval        time.Duration
	ErrorBackoff    time.Duration
}

// Bot runs the fetch, evaluate, order cycle over the configured symbols.
type Bot struct {
	Broker    broker.Broker
	Collector *collector.Collector
	Engine    *strategy.Engine
	Trader    *trader.Submitter
	Tracker   *state.Tracker
	Recorder  recorder.Recorder
	Notifier  notifier.Notifier
	Clock     Clock
	Options   Options
}

// New creates a Bot on the wall clock. nil recorder or notifier become no-ops.
func New(b broker.Broker, col *collector.Collector, eng *strategy.Engine, sub *trader.Submitter,
	tr *state.Tracker, rec recorder.Recorder, n notifier.Notifier, opts Options) *Bot {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.Noop{}
	}
	if opts.SummaryMode == "" {
		opts.SummaryMode = SummaryOrders
	}
	return &Bot{
		Broker:    b,
		Collector: col,
		Engine:    eng,
		Trader:    sub,
		Tracker:   tr,
		Recorder:  rec,
		Notifier:  n,
		Clock:     RealClock(),
		Options:   opts,
	}
}

// Backoff returns how long to wait after report before the next tick.
func (b *Bot) Backoff(report TickReport) time.Duration {
	if report.Err != nil || report.Fatal() {
		return b.Options.ErrorBackoff
	}
	return b.Options.Interval
}

// Run sends the startup summary, then ticks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log.Infof("[BOT] started: %d symbols, $%.2f per trade, every %v",
		len(b.Options.Symbols), b.Options.MaxTradeDollars, b.Options.Interval)
	b.SendSummary(ctx, state.DateOf(b.Clock.Now()))

	for {
		if ctx.Err() != nil {
			log.Info("[BOT] stopped")
			return nil
		}
		report := b.Tick(ctx)
		wait := b.Backoff(report)
		if wait != b.Options.Interval {
			log.Warnf("[BOT] tick failed, backing off %v", wait)
		}
		select {
		case <-ctx.Done():
			log.Info("[BOT] stopped")
			return nil
		case <-b.Clock.After(wait):
		}
	}
}

// Tick evaluates every symbol once. One symbol's failure never blocks the rest.
func (b *Bot) Tick(ctx context.Context) (report TickReport) {
	now := b.Clock.Now()
	today := state.DateOf(now)
	report.Date = today

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[BOT] tick panic: %v", r)
			report.Err = fmt.Errorf("tick panic: %v", r)
		}
	}()

	var positions map[string]model.Position
	if b.Options.ManageSells {
		ps, err := b.Broker.Positions(ctx)
		if err != nil {
			log.Errorf("[BOT] fetch positions: %v", err)
			report.Err = fmt.Errorf("fetch positions: %w", err)
		} else {
			positions = broker.PositionsBySymbol(ps)
		}
	}

	for _, symbol := range b.Options.Symbols {
		if err := ctx.Err(); err != nil {
			report.Err = err
			return report
		}
		report.Results = append(report.Results, b.evaluateSymbol(ctx, symbol, today, positions))
	}

	if b.Options.LogPositions {
		b.logPositions(ctx)
	}

	if now.Hour() == b.Options.SummaryHour && b.Tracker.ShouldSendSummary(today) {
		b.SendSummary(ctx, today)
		b.Tracker.RecordSummarySent(today)
		report.SummarySent = true
	}

	log.Debugf("[BOT] tick %s: %d ok, %d skipped, %d retryable, %d fatal, %d trades today",
		today, report.Count(StatusOK), report.Count(StatusSkipped), report.Count(StatusRetryable),
		report.Count(StatusFatal), b.Tracker.DailyTradeCount())
	return report
}

func (b *Bot) evaluateSymbol(ctx context.Context, symbol string, today state.Date,
	positions map[string]model.Position) (res SymbolResult) {
	res = SymbolResult{Symbol: symbol, Status: StatusOK}
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[BOT] %s: panic: %v", symbol, r)
			res.Status = StatusFatal
			res.Err = fmt.Errorf("panic: %v", r)
		}
	}()

	if b.Tracker.HasTradedToday(symbol, today) {
		log.Infof("[SKIP] %s already traded today", symbol)
		return skipped(res, "already traded today")
	}

	series, err := b.Collector.Collect(ctx, symbol)
	if err != nil {
		if errors.Is(err, collector.ErrNoData) {
			log.Warnf("[DATA] %s: no data", symbol)
			return skipped(res, "no data")
		}
		log.Errorf("[DATA] %s: %v", symbol, err)
		return failed(res, err)
	}
	if _, ok := series.Latest(); !ok {
		log.Infof("[SKIP] %s: not enough bars for indicators", symbol)
		return skipped(res, "insufficient data")
	}

	var pos *model.Position
	if p, ok := positions[symbol]; ok {
		pos = &p
	}
	sig := b.Engine.Evaluate(series, pos)
	b.recordEvaluation(symbol, sig)
	log.Infof("[BOT] %s close=%.2f ema=%.2f rsi=%.1f buy=%t sell=%t",
		symbol, sig.Point.Close, sig.Point.EMA, sig.Point.RSI, sig.Buy, sig.Sell)

	// An unexecuted buy still falls through, so a held position can always be sold.
	if sig.Buy && b.buy(ctx, symbol, today, sig, &res) {
		return res
	}

	if sig.Sell && pos != nil {
		if b.Tracker.HasSoldToday(symbol, today) {
			log.Infof("[SKIP] %s already sold today", symbol)
			if res.Status == StatusOK {
				return skipped(res, "already sold today")
			}
			return res
		}
		log.Infof("[SIGNAL] %s sell: %s", symbol, sig.SellReason)
		out := b.Trader.Sell(ctx, symbol, pos.Qty)
		switch out.Outcome {
		case trader.OutcomeSubmitted:
			b.Tracker.RecordSell(symbol, today)
			res.Action = ActionSell
			if res.Status == StatusSkipped {
				res.Status, res.Reason = StatusOK, ""
			}
		case trader.OutcomeSkipped:
			if res.Status == StatusOK {
				return skipped(res, out.Reason)
			}
		default:
			return failed(res, out.Err)
		}
	}
	return res
}

// buy reserves a daily slot and submits the buy. It reports whether an order went out;
// otherwise res carries the reason and the slot is returned.
func (b *Bot) buy(ctx context.Context, symbol string, today state.Date, sig *model.Signal, res *SymbolResult) bool {
	if !b.Tracker.TryReserveTrade(b.Options.MaxTradesPerDay) {
		log.Infof("[SKIP] %s: daily trade cap %d reached", symbol, b.Options.MaxTradesPerDay)
		*res = skipped(*res, "daily trade cap reached")
		return false
	}
	log.Infof("[SIGNAL] %s buy: %s", symbol, sig.BuyReason)
	out := b.Trader.Buy(ctx, symbol, b.Options.MaxTradeDollars)
	switch out.Outcome {
	case trader.OutcomeSubmitted:
		b.Tracker.RecordTrade(symbol, today)
		log.Infof("[BOT] %s bought, %d trades today", symbol, b.Tracker.DailyTradeCount())
		res.Action = ActionBuy
		return true
	case trader.OutcomeSkipped:
		b.Tracker.ReleaseTrade()
		*res = skipped(*res, out.Reason)
	default:
		b.Tracker.ReleaseTrade()
		*res = failed(*res, out.Err)
	}
	return false
}

func skipped(res SymbolResult, reason string) SymbolResult {
	res.Status = StatusSkipped
	res.Reason = reason
	return res
}

// failed records err on res. A fatal status is never downgraded.
func failed(res SymbolResult, err error) SymbolResult {
	if res.Status != StatusFatal {
		res.Status = classify(err)
	}
	res.Err = errors.Join(res.Err, err)
	return res
}

func (b *Bot) recordEvaluation(symbol string, sig *model.Signal) {
	er, ok := b.Recorder.(recorder.EvaluationRecorder)
	if !ok {
		return
	}
	if err := er.RecordEvaluation(&recorder.EvaluationRecord{
		Time:   b.Clock.Now(),
		Symbol: symbol,
		Close:  sig.Point.Close,
		EMA:    sig.Point.EMA,
		RSI:    sig.Point.RSI,
		Buy:    sig.Buy,
		Sell:   sig.Sell,
		Reason: sig.Reason(),
	}); err != nil {
		log.Errorf("[LOG] record evaluation %s: %v", symbol, err)
	}
}

func (b *Bot) logPositions(ctx context.Context) {
	positions, err := b.Broker.Positions(ctx)
	if err != nil {
		log.Errorf("[POS] fetch positions: %v", err)
		return
	}
	if len(positions) == 0 {
		log.Info("[POS] no open positions")
		return
	}
	for _, p := range positions {
		log.Infof("[POS] %s qty=%.0f entry=%.2f now=%.2f pl=%.2f",
			p.Symbol, p.Qty, p.AvgEntryPrice, p.CurrentPrice, p.UnrealizedPL)
	}
}

// SendSummary emails the summary for day. Failures are logged and swallowed.
func (b *Bot) SendSummary(ctx context.Context, day state.Date) {
	subject, body, err := b.summary(ctx, day)
	if err != nil {
		log.Errorf("[NOTIFY] build summary: %v", err)
		return
	}
	b.trySend(ctx, subject, body)
}

func (b *Bot) summary(ctx context.Context, day state.Date) (subject, body string, err error) {
	switch b.Options.SummaryMode {
	case SummaryPositions:
		positions, err := b.Broker.Positions(ctx)
		if err != nil {
			return "", "", fmt.Errorf("positions: %w", err)
		}
		equity, err := b.Broker.AccountEquity(ctx)
		if err != nil {
			return "", "", fmt.Errorf("account equity: %w", err)
		}
		subject, body = notifier.FormatPositionsSummary(string(day), positions, equity)
		return subject, body, nil
	default:
		now := b.Clock.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		orders, err := b.Broker.FilledOrders(ctx, midnight)
		if err != nil {
			return "", "", fmt.Errorf("filled orders: %w", err)
		}
		subject, body = notifier.FormatOrdersSummary(string(day), orders)
		return subject, body, nil
	}
}

func (b *Bot) trySend(ctx context.Context, subject, body string) {
	if err := b.Notifier.Send(ctx, subject, body); err != nil {
		log.Errorf("[NOTIFY] send %q: %v", subject, err)
		return
	}
	log.Infof("[NOTIFY] sent %q", subject)
}
