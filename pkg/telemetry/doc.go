// Package telemetry groups the observability building blocks of the hello
// server.
//
// # Components
//
//   - logging: structured slog logging with masking of passwords and sessions
//   - metrics: Prometheus collectors for HTTP traffic and the rate limiter
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC
//   - health: liveness and readiness endpoints
//
// Each subpackage is configured from the matching section of
// config.TelemetryConfig and wired together in pkg/server.
package telemetry
