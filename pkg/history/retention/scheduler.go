package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a Pruner on a cron schedule.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for pruner.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
	}
}

// Start schedules pruning on pruner's PruneSchedule. The scheduler stops
// when ctx is cancelled.
//
// An empty schedule or a zero retention leaves the scheduler idle and
// returns nil.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.pruner.config
	logger := s.pruner.logger

	if cfg.PruneSchedule == "" || cfg.RetentionDays <= 0 {
		logger.Info("history pruning disabled",
			"schedule", cfg.PruneSchedule,
			"retention_days", cfg.RetentionDays,
		)
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(cfg.PruneSchedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", cfg.PruneSchedule, err)
	}

	s.cron.Start()
	s.running = true

	logger.Info("retention scheduler started",
		"schedule", cfg.PruneSchedule,
		"retention_days", cfg.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.pruner.Prune(ctx); err != nil {
		s.pruner.logger.ErrorContext(ctx, "scheduled pruning failed", "error", err)
	}
}

// Stop stops the scheduler and waits for any running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.pruner.logger.Info("retention scheduler stopped")
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled pruning time, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
