package recorder

import (
	"fmt"
	"os"
	"sync"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

// csvRow is one line of the trade log: timestamp,action,symbol,quantity,price.
type csvRow struct {
	Timestamp string `csv:"timestamp"`
	Action    string `csv:"action"`
	Symbol    string `csv:"symbol"`
	Quantity  int64  `csv:"quantity"`
	Price     string `csv:"price"`
}

// CSVRecorder appends one headerless line per order to a local file.
type CSVRecorder struct {
	mu   sync.Mutex
	file *os.File
}

// NewCSVRecorder opens (or creates) the trade log for appending.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trade log: %w", err)
	}
	log.Infof("trade log opened: %s", path)
	return &CSVRecorder{file: f}, nil
}

func (r *CSVRecorder) RecordTrade(rec *TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := []*csvRow{{
		Timestamp: rec.Time.Format("2006-01-02T15:04:05"),
		Action:    rec.Action,
		Symbol:    rec.Symbol,
		Quantity:  rec.Qty,
		Price:     fmt.Sprintf("%.2f", rec.Price),
	}}
	if err := gocsv.MarshalWithoutHeaders(&rows, r.file); err != nil {
		return fmt.Errorf("append trade log: %w", err)
	}
	return nil
}

func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
