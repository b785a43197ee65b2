package bot

import (
	"errors"

	"RSITrader/internal/broker"
	"RSITrader/internal/state"
)

// Status classifies the outcome of evaluating one symbol.
type Status string

const (
	StatusOK        Status = "ok"
	StatusSkipped   Status = "skipped"
	StatusRetryable Status = "retryable"
	StatusFatal     Status = "fatal"
)

// Action is the order placed for a symbol, if any.
type Action string

const (
	ActionNone Action = ""
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// SymbolResult is the outcome of one symbol on one tick.
type SymbolResult struct {
	Symbol string
	Status Status
	Action Action
	Reason string
	Err    error
}

// TickReport aggregates a whole tick.
type TickReport struct {
	Date        state.Date
	Results     []SymbolResult
	Err         error // tick-level failure outside any single symbol
	SummarySent bool
}

// Fatal reports whether any symbol failed fatally.
func (r TickReport) Fatal() bool {
	for _, res := range r.Results {
		if res.Status == StatusFatal {
			return true
		}
	}
	return false
}

// Count returns how many results have the given status.
func (r TickReport) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

func classify(err error) Status {
	if errors.Is(err, broker.ErrUnauthorized) {
		return StatusFatal
	}
	return StatusRetryable
}
