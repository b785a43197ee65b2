package state

import (
	"sync"
	"time"
)

// Date is a calendar day in the bot's local time zone, formatted YYYY-MM-DD.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// Snapshot is a copy of the tracker state, used for logging and summaries.
type Snapshot struct {
	Bought          map[string]Date
	Sold            map[string]Date
	TradeCount      int
	LastSummarySent Date
}

// Tracker gates at most one buy and one sell per symbol per day.
// State is held in memory only and is lost on restart.
type Tracker struct {
	mu              sync.Mutex
	bought          map[string]Date
	sold            map[string]Date
	tradeCount      int
	lastSummarySent Date
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		bought: make(map[string]Date),
		sold:   make(map[string]Date),
	}
}

// HasTradedToday reports whether a buy for symbol was recorded on date.
func (t *Tracker) HasTradedToday(symbol string, date Date) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bought[symbol] == date
}

// RecordTrade marks a buy for symbol on date.
func (t *Tracker) RecordTrade(symbol string, date Date) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bought[symbol] = date
}

// HasSoldToday reports whether a sell for symbol was recorded on date.
func (t *Tracker) HasSoldToday(symbol string, date Date) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sold[symbol] == date
}

// RecordSell marks a sell for symbol on date.
func (t *Tracker) RecordSell(symbol string, date Date) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sold[symbol] = date
}

// IncrementDailyTradeCount bumps the global buy counter and returns the new value.
func (t *Tracker) IncrementDailyTradeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tradeCount++
	return t.tradeCount
}

// ResetDailyTradeCount zeroes the global buy counter (called at midnight).
func (t *Tracker) ResetDailyTradeCount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tradeCount = 0
}

// DailyTradeCount returns the current global buy counter.
func (t *Tracker) DailyTradeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tradeCount
}

// CanTrade reports whether another buy fits under max. max <= 0 means unlimited.
func (t *Tracker) CanTrade(max int) bool {
	if max <= 0 {
		return true
	}
	return t.DailyTradeCount() < max
}

// TryReserveTrade takes one slot under max in a single locked step and reports
// whether it succeeded. max <= 0 means unlimited.
func (t *Tracker) TryReserveTrade(max int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if max > 0 && t.tradeCount >= max {
		return false
	}
	t.tradeCount++
	return true
}

// ReleaseTrade returns a slot taken by TryReserveTrade for a buy that did not go out.
func (t *Tracker) ReleaseTrade() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tradeCount > 0 {
		t.tradeCount--
	}
}

// ShouldSendSummary reports whether no summary has been sent on date yet.
func (t *Tracker) ShouldSendSummary(date Date) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSummarySent != date
}

// RecordSummarySent marks the summary for date as sent.
func (t *Tracker) RecordSummarySent(date Date) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSummarySent = date
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Snapshot{
		Bought:          make(map[string]Date, len(t.bought)),
		Sold:            make(map[string]Date, len(t.sold)),
		TradeCount:      t.tradeCount,
		LastSummarySent: t.lastSummarySent,
	}
	for k, v := range t.bought {
		s.Bought[k] = v
	}
	for k, v := range t.sold {
		s.Sold[k] = v
	}
	return s
}
