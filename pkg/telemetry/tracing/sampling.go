package tracing

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newSampler maps a sample ratio to a sampler. A ratio of 1 or more samples
// everything, 0 or less samples nothing.
//
// The sampler is wrapped in ParentBased so an incoming traceparent keeps
// its sampling decision.
func newSampler(ratio float64) sdktrace.Sampler {
	var base sdktrace.Sampler
	switch {
	case ratio >= 1:
		base = sdktrace.AlwaysSample()
	case ratio <= 0:
		base = sdktrace.NeverSample()
	default:
		base = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(base)
}
