package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSITrader/internal/model"
	"RSITrader/internal/recorder"
)

func TestFormatOrdersSummary(t *testing.T) {
	filled := time.Date(2024, 6, 3, 14, 5, 0, 0, time.UTC)
	subject, body := FormatOrdersSummary("2024-06-03", []model.Order{
		{Symbol: "AAPL", Side: model.SideBuy, FilledQty: 2, FilledAvgPrice: 34.1, FilledAt: filled},
		{Symbol: "TSLA", Side: model.SideSell, FilledQty: 1, FilledAvgPrice: 181.25, FilledAt: filled.Add(time.Hour)},
	})
	assert.Equal(t, "Trading summary 2024-06-03: 2 filled orders", subject)
	assert.Contains(t, body, "AAPL")
	assert.Contains(t, body, "$34.10")
	assert.Contains(t, body, "SELL")
	assert.Contains(t, body, "15:05:00")

	_, body = FormatOrdersSummary("2024-06-03", nil)
	assert.Contains(t, body, "No orders were filled.")
}

func TestFormatPositionsSummary(t *testing.T) {
	subject, body := FormatPositionsSummary("2024-06-03", []model.Position{
		{Symbol: "MSFT", Qty: 1, AvgEntryPrice: 400, CurrentPrice: 410, UnrealizedPL: 10},
		{Symbol: "AAPL", Qty: 2, AvgEntryPrice: 190, CurrentPrice: 187.5, UnrealizedPL: -5},
	}, 10250.75)
	assert.Equal(t, "Trading summary 2024-06-03: 2 open positions", subject)
	assert.Contains(t, body, "+10.00")
	assert.Contains(t, body, "-5.00")
	assert.Contains(t, body, "Total unrealized P&L: +5.00")
	assert.Contains(t, body, "Account equity: $10250.75")

	_, body = FormatPositionsSummary("2024-06-03", nil, 0)
	assert.Contains(t, body, "No open positions.")
	assert.NotContains(t, body, "Account equity")
}

func TestFormatTrade(t *testing.T) {
	subject, body := FormatTrade(&recorder.TradeRecord{
		Time: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC), Action: recorder.ActionBuy,
		Symbol: "AAPL", Qty: 2, Price: 34, OrderID: "ord-1",
	})
	assert.Equal(t, "BUY 2 AAPL @ $34.00", subject)
	assert.Contains(t, body, "Order ID: ord-1")
}

func TestEmailNotifier_Message(t *testing.T) {
	e := NewEmailNotifier("smtp.example.com", 587, "bot@example.com", "secret", "ops@example.com")
	var buf bytes.Buffer
	_, err := e.message("Daily summary", "No orders were filled.").WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: bot@example.com")
	assert.Contains(t, raw, "To: ops@example.com")
	assert.Contains(t, raw, "Subject: Daily summary")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "No orders were filled.")
}

func TestEmailNotifier_CancelledContext(t *testing.T) {
	e := NewEmailNotifier("smtp.example.com", 587, "bot@example.com", "secret", "ops@example.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Send(ctx, "s", "b"), context.Canceled)
}

func TestTelegramNotifier_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken123/sendMessage", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Contains(t, payload["text"], "<b>Fill &amp; summary</b>")

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token123", "42", "")
	tn.APIBase = srv.URL
	tn.RetryBase = time.Millisecond

	require.NoError(t, tn.Send(context.Background(), "Fill & summary", "AAPL 2"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTelegramNotifier_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("t", "1", "")
	tn.APIBase = srv.URL
	tn.RetryBase = time.Millisecond
	tn.MaxRetries = 1

	err := tn.Send(context.Background(), "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
}

type stubNotifier struct {
	err   error
	count int
}

func (s *stubNotifier) Send(context.Context, string, string) error {
	s.count++
	return s.err
}

func TestMulti(t *testing.T) {
	boom := errors.New("smtp down")
	failing := &stubNotifier{err: boom}
	ok := &stubNotifier{}

	err := Multi{failing, ok, Noop{}}.Send(context.Background(), "s", "b")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.count)
}
