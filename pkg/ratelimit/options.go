package ratelimit

import (
	"log/slog"
	"time"
)

// Option configures a Store or a Limiter.
type Option func(*options)

type options struct {
	clock   func() time.Time
	metrics *Metrics
	logger  *slog.Logger
}

// WithClock replaces time.Now. Tests use it to drive time deterministically.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithMetrics records decisions and evictions on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
