package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a token bucket with greedy, period-aligned refill.
//
// The bucket starts full. Every time a whole RefillPeriod elapses since the
// last refill, RefillAmount tokens are added in one step (capped at capacity)
// and the refill timestamp advances by exactly the number of elapsed periods.
// Partial periods add nothing, so tokens appear at period boundaries only.
//
// # Thread Safety
//
// All methods lock the bucket; refill and consume happen in one critical
// section so two callers can never spend the same token.
type TokenBucket struct {
	capacity     int64
	tokens       int64
	refillAmount int64
	refillPeriod time.Duration
	lastRefill   time.Time
	mu           sync.Mutex
}

// NewTokenBucket creates a full bucket whose first refill boundary is one
// period after now.
func NewTokenBucket(capacity, refillAmount int64, refillPeriod time.Duration, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillAmount: refillAmount,
		refillPeriod: refillPeriod,
		lastRefill:   now,
	}
}

// TryTake refills the bucket as of now and consumes one token if available.
//
// It returns the tokens left after the attempt, and, when no token was
// available, the time until the next refill boundary.
func (tb *TokenBucket) TryTake(now time.Time) (remaining int64, wait time.Duration, ok bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(now)

	if tb.tokens > 0 {
		tb.tokens--
		return tb.tokens, 0, true
	}

	return 0, tb.untilNextRefillLocked(now), false
}

// Capacity returns the maximum bucket capacity.
func (tb *TokenBucket) Capacity() int64 {
	return tb.capacity
}

// available refills as of now and returns the token count without
// consuming any.
func (tb *TokenBucket) available(now time.Time) int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(now)
	return tb.tokens
}

// refillLocked adds refillAmount tokens per whole period elapsed since the
// last refill. Caller must hold lock.
func (tb *TokenBucket) refillLocked(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed < tb.refillPeriod {
		return
	}

	periods := int64(elapsed / tb.refillPeriod)
	tb.lastRefill = tb.lastRefill.Add(time.Duration(periods) * tb.refillPeriod)

	// Cap before multiplying so long idle gaps cannot overflow.
	if periods >= tb.capacity {
		tb.tokens = tb.capacity
		return
	}

	tb.tokens += periods * tb.refillAmount
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// untilNextRefillLocked returns the time left until the next period boundary.
// Caller must hold lock and have refilled as of now.
func (tb *TokenBucket) untilNextRefillLocked(now time.Time) time.Duration {
	wait := tb.lastRefill.Add(tb.refillPeriod).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
