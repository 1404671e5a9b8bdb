package reminder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanqian/familylog/pkg/metrics"
)

// Scheduler triggers ticks on an interval and never runs two at once.
type Scheduler struct {
	svc      Service
	interval time.Duration
	running  atomic.Bool
	logger   *slog.Logger
}

// NewScheduler builds a scheduler using cfg.Interval.
func NewScheduler(cfg Config, svc Service, logger *slog.Logger) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		svc:      svc,
		interval: cfg.Interval,
		logger:   logger.With("component", "reminder.scheduler"),
	}
}

// Run ticks immediately and then every interval until ctx is cancelled. It
// returns once the tick in flight, if any, has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("reminder scheduler starting", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var inflight sync.WaitGroup
	tick := func() {
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			_, _, _ = s.Trigger(ctx)
		}()
	}

	tick()
	for {
		select {
		case <-ctx.Done():
			inflight.Wait()
			s.logger.Info("reminder scheduler stopped")
			return nil
		case <-ticker.C:
			tick()
		}
	}
}

// Trigger runs one tick unless another is still in flight. ran is false when the
// call was dropped.
func (s *Scheduler) Trigger(ctx context.Context) (stats metrics.TickStats, ran bool, err error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("reminder tick dropped, previous tick still running")
		return metrics.TickStats{}, false, nil
	}
	defer s.running.Store(false)

	stats, err = s.svc.Tick(ctx)
	if err != nil {
		s.logger.Error("reminder tick failed", "error", err, "delivered", stats.Delivered)
	}
	return stats, true, err
}
