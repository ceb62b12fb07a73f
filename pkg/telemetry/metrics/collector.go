package metrics

import (
	"strconv"
	"sync"
	"time"

	"webeng-hq/hello/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Namespace prefixes every metric exported by the server.
const Namespace = "hello"

// maxRouteCardinality bounds the number of distinct route labels.
const maxRouteCardinality = 256

// OtherRoute is the route label used once the cardinality limit is reached.
const OtherRoute = "other"

// Collector owns the Prometheus registry of the server and the HTTP
// request metrics. Other packages register their own collectors on
// Registry(), the rate limiter among them.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	requestMetrics *RequestMetrics

	routes *CardinalityLimiter
}

// NewCollector creates a collector. If registry is nil a fresh registry is
// created. Go runtime and process collectors are registered alongside the
// request metrics.
//
// A disabled collector still owns a registry so callers can register on it,
// but RecordRequest is a no-op.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	buckets := cfg.RequestDurationBuckets
	if len(buckets) == 0 {
		buckets = config.DefaultRequestDurationBuckets
	}

	c := &Collector{
		enabled:  cfg.IsEnabled(),
		registry: registry,
		routes:   NewCardinalityLimiter(maxRouteCardinality),
	}
	c.requestMetrics = NewRequestMetrics(buckets, registry)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Enabled reports whether request metrics are recorded and served.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// RecordRequest records one completed HTTP request. route should be the
// matched mux pattern, not the raw path.
//
// Example:
//
//	collector.RecordRequest("GET", "GET /api/hello", 200, 3*time.Millisecond)
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	if route == "" || !c.routes.Allow(route) {
		route = OtherRoute
	}

	c.requestMetrics.RecordRequest(method, route, strconv.Itoa(status), duration)
}

// InFlight adjusts the in-flight request gauge by delta.
func (c *Collector) InFlight(delta int) {
	if !c.Enabled() {
		return
	}
	c.requestMetrics.inFlight.Add(float64(delta))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Known values are
// always allowed; new ones only while below the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
