package stats

import (
	"context"
	"maps"
	"sync"
)

// Default cardinality limits of a MemoryRecorder.
const (
	DefaultMaxRoutes = 256
	DefaultMaxKeys   = 10000
)

// MemoryRecorder keeps counters in process memory. Nothing expires; the
// per-route and per-client maps are capped and fold new labels into
// OtherRoute once full.
type MemoryRecorder struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byKey   map[string]Counters

	trackKeys bool
	maxRoutes int
	maxKeys   int
}

// MemoryOption configures a MemoryRecorder.
type MemoryOption func(*MemoryRecorder)

// WithKeyTracking enables per-client counters.
func WithKeyTracking(track bool) MemoryOption {
	return func(r *MemoryRecorder) { r.trackKeys = track }
}

// WithLimits sets the maximum number of distinct routes and clients.
// Non-positive values keep the defaults.
func WithLimits(maxRoutes, maxKeys int) MemoryOption {
	return func(r *MemoryRecorder) {
		if maxRoutes > 0 {
			r.maxRoutes = maxRoutes
		}
		if maxKeys > 0 {
			r.maxKeys = maxKeys
		}
	}
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder(opts ...MemoryOption) *MemoryRecorder {
	r := &MemoryRecorder{
		byRoute:   make(map[string]Counters),
		byKey:     make(map[string]Counters),
		maxRoutes: DefaultMaxRoutes,
		maxKeys:   DefaultMaxKeys,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record implements Recorder.
func (r *MemoryRecorder) Record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bump(&r.total, ev.Allowed)

	if ev.Route != "" {
		bumpCapped(r.byRoute, ev.Route, r.maxRoutes, ev.Allowed)
	}
	if r.trackKeys && ev.Key != "" {
		bumpCapped(r.byKey, ev.Key, r.maxKeys, ev.Allowed)
	}
	return nil
}

// Total implements Reader.
func (r *MemoryRecorder) Total(context.Context) (Counters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total, nil
}

// ByRoute returns a copy of the per-route counters.
func (r *MemoryRecorder) ByRoute() map[string]Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.byRoute)
}

// ByKey returns a copy of the per-client counters.
func (r *MemoryRecorder) ByKey() map[string]Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.byKey)
}

// bumpCapped counts under label, or under OtherRoute when label is new and
// m already holds limit-1 labels. The reserved slot keeps OtherRoute
// insertable so len(m) never exceeds limit.
func bumpCapped(m map[string]Counters, label string, limit int, allowed bool) {
	if _, ok := m[label]; !ok && len(m) >= limit-1 {
		label = OtherRoute
	}
	c := m[label]
	bump(&c, allowed)
	m[label] = c
}

func bump(c *Counters, allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Rejected++
}
