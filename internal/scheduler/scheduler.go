// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dropwatch/dropwatch/internal/services"
)

// Scheduler owns the periodic-check configuration (interval, next run) and
// invokes the orchestrator's "check all prices now" operation on a ticker.
// It holds no session state beyond that.
type Scheduler struct {
	checker  *services.CheckerService
	interval time.Duration

	mu        sync.Mutex
	lastRunAt time.Time
	nextRunAt time.Time
}

func New(checker *services.CheckerService, interval time.Duration) *Scheduler {
	return &Scheduler{
		checker:  checker,
		interval: interval,
	}
}

// Status is the schedule configuration exposed to the dashboard.
type Status struct {
	Interval  string    `json:"interval"`
	LastRunAt time.Time `json:"last_run_at"`
	NextRunAt time.Time `json:"next_run_at"`
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Interval:  s.interval.String(),
		LastRunAt: s.lastRunAt,
		NextRunAt: s.nextRunAt,
	}
}

// Run blocks until ctx is cancelled, performing one pass immediately and
// then one per interval.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logrus.WithField("interval", s.interval).Info("Scheduler started")

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Scheduler stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	s.lastRunAt = time.Now().UTC()
	s.nextRunAt = s.lastRunAt.Add(s.interval)
	s.mu.Unlock()

	if _, err := s.checker.CheckAll(ctx); err != nil {
		logrus.WithError(err).Error("Scheduled price check failed")
	}
}
