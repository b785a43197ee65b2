package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"RSITrader/internal/bot"
	"RSITrader/internal/state"
)

// DefaultResetCron resets the daily trade counter at local midnight.
const DefaultResetCron = "0 0 0 * * *"

// Scheduler runs the polling loop and the cron jobs around it.
type Scheduler struct {
	Cron    *cron.Cron
	Bot     *bot.Bot
	Tracker *state.Tracker

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a new Scheduler.
func NewScheduler(b *bot.Bot, tr *state.Tracker) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Bot:     b,
		Tracker: tr,
	}
}

// RegisterAll registers the daily counter reset.
func (s *Scheduler) RegisterAll(resetCron string) error {
	if resetCron == "" {
		resetCron = DefaultResetCron
	}
	if _, err := s.Cron.AddFunc(resetCron, s.resetDaily); err != nil {
		return fmt.Errorf("register daily reset: %w", err)
	}
	return nil
}

// Start starts the cron jobs and the polling loop on its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.Cron.Start()
	go func() {
		defer close(s.done)
		if err := s.Bot.Run(loopCtx); err != nil {
			log.Errorf("[BOT] loop exited: %v", err)
		}
	}()
	log.Info("[CRON] scheduler started")
}

// Done is closed once the polling loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Stop cancels the loop, waits for it to exit and stops the cron jobs.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	<-s.Cron.Stop().Done()
	log.Info("[CRON] scheduler stopped")
}

func (s *Scheduler) resetDaily() {
	before := s.Tracker.DailyTradeCount()
	s.Tracker.ResetDailyTradeCount()
	log.Infof("[CRON] daily trade counter reset (was %d)", before)
}
