package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"RSITrader/internal/model"
)

// MockBroker returns controllable fixed data for development and testing.
type MockBroker struct {
	mu sync.Mutex

	BarsBySymbol  map[string][]model.OHLCV
	Prices        map[string]float64
	OpenPositions []model.Position
	Filled        []model.Order
	Equity        float64

	BarsErr      map[string]error
	PriceErr     map[string]error
	PositionsErr error
	SubmitErrs   []error // consumed one per SubmitOrder call, nil entries succeed

	Submitted []model.OrderRequest
	nextID    int
}

// NewMockBroker creates an empty MockBroker.
func NewMockBroker() *MockBroker {
	return &MockBroker{
		BarsBySymbol: make(map[string][]model.OHLCV),
		Prices:       make(map[string]float64),
		BarsErr:      make(map[string]error),
		PriceErr:     make(map[string]error),
	}
}

func (m *MockBroker) Name() string { return "mock" }

func (m *MockBroker) Bars(_ context.Context, symbol string, _ model.Timeframe, limit int) ([]model.OHLCV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.BarsErr[symbol]; err != nil {
		return nil, err
	}
	bars := m.BarsBySymbol[symbol]
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (m *MockBroker) LatestTradePrice(_ context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.PriceErr[symbol]; err != nil {
		return 0, err
	}
	price, ok := m.Prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

func (m *MockBroker) SubmitOrder(_ context.Context, req model.OrderRequest) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submitted = append(m.Submitted, req)
	if len(m.SubmitErrs) > 0 {
		err := m.SubmitErrs[0]
		m.SubmitErrs = m.SubmitErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	m.nextID++
	return &model.Order{
		ID:            fmt.Sprintf("mock-%d", m.nextID),
		ClientOrderID: req.ClientOrderID,
		Symbol:        req.Symbol,
		Side:          req.Side,
		Qty:           float64(req.Qty),
		Status:        "accepted",
		SubmittedAt:   time.Now(),
	}, nil
}

func (m *MockBroker) Positions(_ context.Context) ([]model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PositionsErr != nil {
		return nil, m.PositionsErr
	}
	return append([]model.Position(nil), m.OpenPositions...), nil
}

func (m *MockBroker) FilledOrders(_ context.Context, since time.Time) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Order
	for _, o := range m.Filled {
		if !o.FilledAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockBroker) AccountEquity(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Equity, nil
}

// SubmittedOrders returns a copy of every order request seen so far.
func (m *MockBroker) SubmittedOrders() []model.OrderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.OrderRequest(nil), m.Submitted...)
}
