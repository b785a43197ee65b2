package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSITrader/internal/bot"
	"RSITrader/internal/broker"
	"RSITrader/internal/state"
)

// stuckClock never fires, so the loop only ends through cancellation.
type stuckClock struct{ now time.Time }

func (c stuckClock) Now() time.Time                       { return c.now }
func (c stuckClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func newTestScheduler() (*Scheduler, *state.Tracker) {
	tr := state.NewTracker()
	b := bot.New(broker.NewMockBroker(), nil, nil, nil, tr, nil, nil, bot.Options{
		Interval:     time.Minute,
		ErrorBackoff: time.Second,
		SummaryHour:  0,
	})
	b.Clock = stuckClock{now: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)}
	return NewScheduler(b, tr), tr
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler()
	require.NoError(t, s.RegisterAll(""))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterAll("not a cron"))
}

func TestResetDaily(t *testing.T) {
	s, tr := newTestScheduler()
	tr.IncrementDailyTradeCount()
	tr.IncrementDailyTradeCount()

	s.resetDaily()
	assert.Zero(t, tr.DailyTradeCount())
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler()
	require.NoError(t, s.RegisterAll(DefaultResetCron))

	s.Start(context.Background())
	s.Stop()

	select {
	case <-s.Done():
	default:
		t.Fatal("loop still running after Stop")
	}
}

func TestParentCancelStopsLoop(t *testing.T) {
	s, _ := newTestScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop on parent cancel")
	}
	s.Stop()
}
