package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks HTTP traffic.
//
// Metrics:
//   - hello_http_requests_total{method,route,status}
//   - hello_http_request_duration_seconds{method,route}
//   - hello_http_requests_in_flight
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(buckets []float64, registry prometheus.Registerer) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   buckets,
			},
			[]string{"method", "route"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.inFlight,
	)

	return rm
}

// RecordRequest records one completed request.
func (rm *RequestMetrics) RecordRequest(method, route, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(method, route, status).Inc()
	rm.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
