package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for admission control.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Decisions    *prometheus.CounterVec
	Evictions    prometheus.Counter
	ActiveKeys   prometheus.Gauge
	StatsDropped prometheus.Counter
}

// NewMetrics registers the admission collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hello_ratelimit_decisions_total",
				Help: "Total number of admission decisions",
			},
			[]string{"result"}, // allowed, rejected
		),
		Evictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hello_ratelimit_evictions_total",
				Help: "Total number of idle buckets evicted",
			},
		),
		ActiveKeys: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hello_ratelimit_active_keys",
				Help: "Number of client keys currently holding a bucket",
			},
		),
		StatsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hello_ratelimit_stats_dropped_total",
				Help: "Total number of admission events dropped by the statistics sink",
			},
		),
	}
}

// StatsDropHook returns a hook counting dropped statistics events, or nil
// for a nil *Metrics.
func (m *Metrics) StatsDropHook() func() {
	if m == nil {
		return nil
	}
	return m.StatsDropped.Inc
}

func (m *Metrics) recordDecision(allowed bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if allowed {
		result = "allowed"
	}
	m.Decisions.WithLabelValues(result).Inc()
}

func (m *Metrics) recordEviction(n int) {
	if m == nil {
		return
	}
	m.Evictions.Add(float64(n))
}

func (m *Metrics) adjustActive(delta int) {
	if m == nil {
		return
	}
	m.ActiveKeys.Add(float64(delta))
}
