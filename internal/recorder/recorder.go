package recorder

import (
	"errors"
	"time"
)

// Trade actions written to the journals.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// TradeRecord is one submitted order.
type TradeRecord struct {
	Time          time.Time
	Action        string
	Symbol        string
	Qty           int64
	Price         float64
	OrderID       string
	ClientOrderID string
}

// EvaluationRecord is the indicator state and decision for one symbol on one tick.
type EvaluationRecord struct {
	Time   time.Time
	Symbol string
	Close  float64
	EMA    float64
	RSI    float64
	Buy    bool
	Sell   bool
	Reason string
}

// Recorder journals submitted orders.
type Recorder interface {
	RecordTrade(rec *TradeRecord) error
	Close() error
}

// EvaluationRecorder is implemented by journals that also keep per-tick evaluations.
type EvaluationRecorder interface {
	RecordEvaluation(rec *EvaluationRecord) error
}

// Multi fans records out to several recorders.
type Multi []Recorder

func (m Multi) RecordTrade(rec *TradeRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordTrade(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordEvaluation(rec *EvaluationRecord) error {
	var errs []error
	for _, r := range m {
		if er, ok := r.(EvaluationRecorder); ok {
			if err := er.RecordEvaluation(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
