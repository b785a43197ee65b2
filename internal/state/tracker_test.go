package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker_TradedToday(t *testing.T) {
	tr := NewTracker()
	today := DateOf(time.Date(2024, 6, 3, 10, 15, 0, 0, time.Local))
	tomorrow := DateOf(time.Date(2024, 6, 4, 0, 0, 1, 0, time.Local))

	assert.False(t, tr.HasTradedToday("AAPL", today))
	tr.RecordTrade("AAPL", today)
	assert.True(t, tr.HasTradedToday("AAPL", today))
	assert.False(t, tr.HasTradedToday("AAPL", tomorrow))
	assert.False(t, tr.HasTradedToday("TSLA", today))
}

func TestTracker_SoldTodayIsIndependent(t *testing.T) {
	tr := NewTracker()
	today := Date("2024-06-03")

	tr.RecordSell("MSFT", today)
	assert.True(t, tr.HasSoldToday("MSFT", today))
	assert.False(t, tr.HasTradedToday("MSFT", today))
	assert.False(t, tr.HasSoldToday("MSFT", Date("2024-06-04")))
}

func TestTracker_DailyTradeCount(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.CanTrade(2))
	assert.Equal(t, 1, tr.IncrementDailyTradeCount())
	assert.Equal(t, 2, tr.IncrementDailyTradeCount())
	assert.False(t, tr.CanTrade(2))
	assert.True(t, tr.CanTrade(0), "zero means no cap")

	tr.ResetDailyTradeCount()
	assert.Equal(t, 0, tr.DailyTradeCount())
	assert.True(t, tr.CanTrade(2))
}

func TestTracker_Summary(t *testing.T) {
	tr := NewTracker()
	today := Date("2024-06-03")

	assert.True(t, tr.ShouldSendSummary(today))
	tr.RecordSummarySent(today)
	assert.False(t, tr.ShouldSendSummary(today))
	assert.True(t, tr.ShouldSendSummary(Date("2024-06-04")))
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.RecordTrade("AAPL", "2024-06-03")
	snap := tr.Snapshot()
	snap.Bought["AAPL"] = "1999-01-01"
	assert.True(t, tr.HasTradedToday("AAPL", "2024-06-03"))
}

func TestTracker_TryReserveTrade(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.TryReserveTrade(2))
	assert.True(t, tr.TryReserveTrade(2))
	assert.False(t, tr.TryReserveTrade(2))
	assert.Equal(t, 2, tr.DailyTradeCount())

	tr.ReleaseTrade()
	assert.Equal(t, 1, tr.DailyTradeCount())
	assert.True(t, tr.TryReserveTrade(2))

	tr.ResetDailyTradeCount()
	tr.ReleaseTrade()
	assert.Zero(t, tr.DailyTradeCount(), "release never goes negative")
	assert.True(t, tr.TryReserveTrade(0), "zero means no cap")
}

func TestTracker_TryReserveTradeConcurrent(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.TryReserveTrade(5) {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, granted)
	assert.Equal(t, 5, tr.DailyTradeCount())
}
