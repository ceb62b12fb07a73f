// Package ratelimit implements per-key admission control with token buckets.
//
// Every client key owns a TokenBucket (capacity 5, refilled with 5 tokens
// every minute by default). Refill is greedy and period-aligned: tokens are
// added in one step each time a whole period elapses, so a drained bucket
// stays empty until the next boundary.
//
// Buckets live in a Store that forgets keys idle for longer than the idle
// timeout (10 minutes by default). Expiry is applied lazily on access and
// by a janitor goroutine:
//
//	store, err := ratelimit.NewStore(ratelimit.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	store.StartJanitor(ctx)
//	defer store.Close()
//
//	limiter := ratelimit.NewLimiter(store)
//	if d := limiter.Allow(clientIP); !d.Allowed {
//		// reject, retry after d.RetryAfterSeconds()
//	}
//
// State is process-local and is lost on restart.
package ratelimit
