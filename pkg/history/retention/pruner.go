package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Deleter is the storage capability the pruner needs.
type Deleter interface {
	DeleteGreetingsBefore(ctx context.Context, t time.Time) (int64, error)
}

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days greetings are kept.
	// 0 keeps them forever.
	RetentionDays int

	// PruneSchedule is a cron expression; empty disables scheduled pruning.
	PruneSchedule string
}

// Pruner deletes greetings older than the retention period.
type Pruner struct {
	store     Deleter
	config    Config
	now       func() time.Time
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a pruner over store.
func NewPruner(store Deleter, cfg Config, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pruner{
		store:  store,
		config: cfg,
		now:    time.Now,
		logger: logger.With("component", "history.retention"),
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Cutoff returns the instant before which greetings are pruned at now.
func (p *Pruner) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.config.RetentionDays)
}

// Prune deletes greetings older than the retention period and returns how
// many were deleted. It is a no-op when RetentionDays is 0.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := p.Cutoff(p.now())
	deleted, err := p.store.DeleteGreetingsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune greetings before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		p.logger.InfoContext(ctx, "pruned greeting history",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
			"cutoff", cutoff,
		)
	} else {
		p.logger.DebugContext(ctx, "no greetings pruned", "cutoff", cutoff)
	}
	return deleted, nil
}

// Start starts the scheduler. See Scheduler.Start.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the scheduler and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// Scheduler returns the pruner's scheduler.
func (p *Pruner) Scheduler() *Scheduler {
	return p.scheduler
}
