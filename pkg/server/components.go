package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"webeng-hq/hello/pkg/config"
	"webeng-hq/hello/pkg/ratelimit"
	"webeng-hq/hello/pkg/ratelimit/stats"
)

// Statistics backends.
const (
	StatsBackendNone   = "none"
	StatsBackendMemory = "memory"
	StatsBackendRedis  = "redis"
)

// bucketConfig maps the ratelimit section onto the limiter configuration.
// A negative cleanup interval disables the janitor.
func bucketConfig(cfg config.RateLimitConfig) ratelimit.Config {
	cleanup := cfg.CleanupInterval
	if cleanup < 0 {
		cleanup = 0
	}
	return ratelimit.Config{
		Capacity:        cfg.Capacity,
		RefillAmount:    cfg.RefillAmount,
		RefillPeriod:    cfg.RefillPeriod,
		IdleTimeout:     cfg.IdleEvictionTimeout,
		CleanupInterval: cleanup,
	}
}

// pinger is a recorder backed by a remote service.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// newRecorder creates the admission statistics recorder. The Redis
// recorder connects lazily and sits behind an AsyncRecorder, so an
// unreachable server only degrades readiness and drops events; onDrop is
// called for each dropped event.
func newRecorder(cfg config.RateLimitStatsConfig, onDrop func(), logger *slog.Logger) (stats.Recorder, error) {
	switch cfg.Backend {
	case StatsBackendNone:
		return stats.Nop{}, nil
	case "", StatsBackendMemory:
		return stats.NewMemoryRecorder(), nil
	case StatsBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		sink := stats.NewRedisRecorder(rdb,
			stats.WithPrefix(cfg.Redis.Prefix),
			stats.WithTTL(cfg.Redis.TTL),
			stats.WithRedisKeyTracking(cfg.Redis.TrackKeys),
		)
		return stats.NewAsyncRecorder(sink,
			stats.WithDropHook(onDrop),
			stats.WithAsyncLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown stats backend %q", cfg.Backend)
	}
}
