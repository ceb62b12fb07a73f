package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 32

// entry is a cached bucket plus the last time its key was seen.
type entry struct {
	bucket     *TokenBucket
	lastAccess time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Store maps client keys to token buckets and forgets keys that stay idle
// longer than the configured timeout.
//
// Keys are spread over fixed shards; a shard lock is held only for the
// lookup or insert, never while a bucket is being consumed. Expired entries
// are treated as absent on access and removed by Sweep, which the janitor
// started with StartJanitor calls periodically.
type Store struct {
	cfg    Config
	shards [shardCount]*shard

	clock   func() time.Time
	metrics *Metrics
	logger  *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewStore creates an empty store for buckets described by cfg.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	s := &Store{
		cfg:     cfg,
		clock:   o.clock,
		metrics: o.metrics,
		logger:  o.logger.With("component", "ratelimit.store"),
		done:    make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return s, nil
}

// Config returns the bucket configuration.
func (s *Store) Config() Config {
	return s.cfg
}

// GetOrCreate returns the live bucket for key, creating a full one if the key
// is unknown or its previous entry has expired. Concurrent first access for
// the same key observes a single bucket.
func (s *Store) GetOrCreate(key string, now time.Time) *TokenBucket {
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if e, ok := sh.entries[key]; ok {
		if !s.expired(e, now) {
			if now.After(e.lastAccess) {
				e.lastAccess = now
			}
			return e.bucket
		}
		s.metrics.recordEviction(1)
	} else {
		s.metrics.adjustActive(1)
	}

	e := &entry{
		bucket:     NewTokenBucket(s.cfg.Capacity, s.cfg.RefillAmount, s.cfg.RefillPeriod, now),
		lastAccess: now,
	}
	sh.entries[key] = e
	return e.bucket
}

// Len returns the number of cached entries, including expired entries not
// yet swept.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// Sweep removes every entry idle for at least the idle timeout as of now and
// returns how many were removed. Buckets are unlinked, never modified.
func (s *Store) Sweep(now time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, e := range sh.entries {
			if s.expired(e, now) {
				delete(sh.entries, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	if removed > 0 {
		s.metrics.recordEviction(removed)
		s.metrics.adjustActive(-removed)
	}
	return removed
}

// StartJanitor sweeps expired entries every CleanupInterval until ctx is
// cancelled or the store is closed. It is a no-op when CleanupInterval is 0.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}

	s.wg.Add(1)
	go s.janitorLoop(ctx)
}

func (s *Store) janitorLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	s.logger.Debug("janitor started", "interval", s.cfg.CleanupInterval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("janitor stopped", "reason", ctx.Err())
			return
		case <-s.done:
			s.logger.Debug("janitor stopped", "reason", "store closed")
			return
		case <-ticker.C:
			if n := s.Sweep(s.clock()); n > 0 {
				s.logger.Debug("evicted idle buckets", "count", n, "remaining", s.Len())
			}
		}
	}
}

// Close stops the janitor and waits for it to exit. It is safe to call more
// than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	return nil
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return now.Sub(e.lastAccess) >= s.cfg.IdleTimeout
}

func (s *Store) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%shardCount]
}
