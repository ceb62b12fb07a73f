package ratelimit

import (
	"log/slog"
	"time"
)

// Limiter decides admission for client keys against the buckets in a Store.
//
// A Limiter holds no per-key state of its own and never keeps a bucket
// pointer past a single call.
type Limiter struct {
	store   *Store
	clock   func() time.Time
	metrics *Metrics
	logger  *slog.Logger
}

// NewLimiter creates a limiter over store.
func NewLimiter(store *Store, opts ...Option) *Limiter {
	o := applyOptions(opts)
	return &Limiter{
		store:   store,
		clock:   o.clock,
		metrics: o.metrics,
		logger:  o.logger.With("component", "ratelimit.limiter"),
	}
}

// TryAcquire attempts to consume one token for key as of now.
func (l *Limiter) TryAcquire(key string, now time.Time) Decision {
	bucket := l.store.GetOrCreate(key, now)
	remaining, wait, ok := bucket.TryTake(now)

	d := Decision{
		Key:        key,
		Allowed:    ok,
		Limit:      bucket.Capacity(),
		Remaining:  remaining,
		RetryAfter: wait,
	}

	l.metrics.recordDecision(ok)
	if !ok {
		l.logger.Debug("request rejected",
			"key", key,
			"retry_after_seconds", d.RetryAfterSeconds(),
		)
	}
	return d
}

// Allow is TryAcquire at the limiter's clock time.
func (l *Limiter) Allow(key string) Decision {
	return l.TryAcquire(key, l.clock())
}

// Store returns the underlying bucket store.
func (l *Limiter) Store() *Store {
	return l.store
}
