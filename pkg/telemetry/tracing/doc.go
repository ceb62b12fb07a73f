// Package tracing provides OpenTelemetry tracing for the hello server.
//
// Spans are exported over OTLP/gRPC to telemetry.tracing.endpoint. W3C
// Trace Context and Baggage propagators are installed globally, so an
// incoming traceparent header continues the caller's trace. When tracing is
// disabled a noop tracer is used and spans cost next to nothing.
//
// # Usage
//
//	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "ratelimit.admit")
//	tracing.SetRateLimitAttributes(span, key, d.Allowed, d.Remaining, d.RetryAfterSeconds())
//	span.End()
//
// The trace and span IDs of the active span are added to log records by
// pkg/telemetry/logging.
package tracing
