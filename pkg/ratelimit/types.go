package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Default values for the admission policy.
const (
	DefaultCapacity        int64 = 5
	DefaultRefillAmount    int64 = 5
	DefaultRefillPeriod          = time.Minute
	DefaultIdleTimeout           = 10 * time.Minute
	DefaultCleanupInterval       = time.Minute
)

// Config describes the token bucket handed out for every client key and the
// lifetime of idle cache entries.
type Config struct {
	// Capacity is the maximum number of tokens a bucket holds (burst size).
	Capacity int64

	// RefillAmount is the number of tokens added at each period boundary.
	RefillAmount int64

	// RefillPeriod is the length of one refill period. Tokens are added in
	// one step when a period elapses, never fractionally.
	RefillPeriod time.Duration

	// IdleTimeout is how long a key may go unused before its bucket is
	// discarded. A key seen again after that starts with a full bucket.
	IdleTimeout time.Duration

	// CleanupInterval is how often the janitor sweeps idle entries.
	// Zero disables the background sweep; expiry is still applied on access.
	CleanupInterval time.Duration
}

// DefaultConfig returns the 5 requests per minute policy with a 10 minute
// idle timeout.
func DefaultConfig() Config {
	return Config{
		Capacity:        DefaultCapacity,
		RefillAmount:    DefaultRefillAmount,
		RefillPeriod:    DefaultRefillPeriod,
		IdleTimeout:     DefaultIdleTimeout,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Validate reports whether the configuration describes a usable bucket.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.RefillAmount <= 0:
		return fmt.Errorf("%w: refill amount must be positive, got %d", ErrInvalidConfig, c.RefillAmount)
	case c.RefillPeriod <= 0:
		return fmt.Errorf("%w: refill period must be positive, got %s", ErrInvalidConfig, c.RefillPeriod)
	case c.IdleTimeout <= 0:
		return fmt.Errorf("%w: idle timeout must be positive, got %s", ErrInvalidConfig, c.IdleTimeout)
	case c.CleanupInterval < 0:
		return fmt.Errorf("%w: cleanup interval cannot be negative, got %s", ErrInvalidConfig, c.CleanupInterval)
	}
	return nil
}

// Decision is the outcome of a single admission check.
type Decision struct {
	// Key is the client key the decision was made for.
	Key string

	// Allowed reports whether a token was consumed.
	Allowed bool

	// Limit is the bucket capacity.
	Limit int64

	// Remaining is the number of tokens left after the check.
	Remaining int64

	// RetryAfter is the time until the next token becomes available.
	// Zero when Allowed is true.
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds, never
// less than one. It returns 0 for admitted decisions.
func (d Decision) RetryAfterSeconds() int64 {
	if d.Allowed {
		return 0
	}
	secs := int64(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Err returns a *QuotaError for rejected decisions and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &QuotaError{Key: d.Key, RetryAfter: d.RetryAfter}
}

var (
	// ErrQuotaExceeded is the sentinel wrapped by every QuotaError.
	ErrQuotaExceeded = errors.New("rate limit exceeded")

	// ErrInvalidConfig is returned when a Config cannot describe a bucket.
	ErrInvalidConfig = errors.New("invalid rate limit configuration")
)

// QuotaError reports a rejected admission. It is an expected outcome, not a
// fault; callers surface it to the client with the retry delay.
type QuotaError struct {
	Key        string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *QuotaError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: retry after %s", e.Key, e.RetryAfter)
}

// Unwrap returns ErrQuotaExceeded.
func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}
