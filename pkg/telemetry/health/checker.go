package health

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Status values reported by the probes.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusDraining  = "draining"
)

// DefaultCheckTimeout bounds a single check when none is configured.
const DefaultCheckTimeout = 5 * time.Second

// CheckFunc performs a health check for a component. It returns nil if the
// component is healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Critical bool    `json:"critical"`
	Duration float64 `json:"duration_ms"`
}

// Status represents the aggregated health of the server.
type Status struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Ready reports whether the status allows serving traffic.
func (s Status) Ready() bool {
	return s.Status == StatusReady || s.Status == StatusDegraded || s.Status == StatusOK
}

type check struct {
	fn       CheckFunc
	critical bool
}

// Checker runs the registered component checks for the readiness probe.
//
// A failing critical check (the user store) makes the server unready. A
// failing non-critical check (the Redis statistics sink) only degrades it.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]check

	checkTimeout time.Duration
	draining     atomic.Bool
	now          func() time.Time
	logger       *slog.Logger
}

// New creates a health checker. A zero timeout uses DefaultCheckTimeout.
func New(checkTimeout time.Duration, logger *slog.Logger) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		checks:       make(map[string]check),
		checkTimeout: checkTimeout,
		now:          time.Now,
		logger:       logger.With("component", "health"),
	}
}

// RegisterCheck registers a critical check. A check with the same name is
// replaced.
func (c *Checker) RegisterCheck(name string, fn CheckFunc) {
	c.register(name, fn, true)
}

// RegisterOptionalCheck registers a check whose failure only degrades the
// server.
func (c *Checker) RegisterOptionalCheck(name string, fn CheckFunc) {
	c.register(name, fn, false)
}

func (c *Checker) register(name string, fn CheckFunc, critical bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check{fn: fn, critical: critical}
}

// UnregisterCheck removes a check.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Checks returns the sorted names of the registered checks.
func (c *Checker) Checks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.checks))
}

// SetDraining marks the server as shutting down. Readiness then fails so
// load balancers stop routing new traffic while in-flight requests finish.
func (c *Checker) SetDraining(draining bool) {
	c.draining.Store(draining)
}

// CheckLiveness reports that the process is running.
func (c *Checker) CheckLiveness(context.Context) Status {
	return Status{Status: StatusOK, Timestamp: c.now()}
}

// CheckReadiness runs all registered checks concurrently and aggregates
// their results.
func (c *Checker) CheckReadiness(ctx context.Context) Status {
	if c.draining.Load() {
		return Status{Status: StatusDraining, Timestamp: c.now()}
	}

	c.mu.RLock()
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, chk := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := c.runCheck(ctx, chk)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}()
	}
	wg.Wait()

	status := StatusReady
	for name, result := range results {
		if result.Status != StatusUnhealthy {
			continue
		}
		c.logger.WarnContext(ctx, "health check failed",
			"check", name,
			"critical", result.Critical,
			"error", result.Message,
		)
		if result.Critical {
			status = StatusUnhealthy
		} else if status == StatusReady {
			status = StatusDegraded
		}
	}

	return Status{Status: status, Checks: results, Timestamp: c.now()}
}

// runCheck executes a single check with the configured timeout.
func (c *Checker) runCheck(ctx context.Context, chk check) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	errChan := make(chan error, 1)
	go func() {
		errChan <- chk.fn(checkCtx)
	}()

	result := CheckResult{Status: StatusOK, Critical: chk.critical}
	select {
	case err := <-errChan:
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		}
	case <-checkCtx.Done():
		result.Status = StatusUnhealthy
		result.Message = "health check timeout"
	}
	result.Duration = float64(time.Since(start).Microseconds()) / 1000
	return result
}
