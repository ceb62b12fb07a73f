// Package metrics exposes the Prometheus registry of the hello server.
//
// The Collector records HTTP request counts, durations and in-flight
// requests labelled by method and matched route. Route labels are capped by
// a CardinalityLimiter; once the cap is reached new routes are reported as
// "other".
//
// The rate limiter registers its own collectors
// (hello_ratelimit_decisions_total, hello_ratelimit_evictions_total,
// hello_ratelimit_active_keys) on the same registry:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	rlMetrics := ratelimit.NewMetrics(collector.Registry())
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
