package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys in the hello.* namespace. HTTP attributes use the
// OpenTelemetry semantic conventions.
const (
	AttrRequestID = "hello.request_id"
	AttrUser      = "hello.user"

	AttrRateLimitKey        = "hello.ratelimit.key"
	AttrRateLimitAllowed    = "hello.ratelimit.allowed"
	AttrRateLimitRemaining  = "hello.ratelimit.remaining"
	AttrRateLimitRetryAfter = "hello.ratelimit.retry_after_seconds"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
)

// SetRequestAttributes records the request ID and the session user.
func SetRequestAttributes(span trace.Span, requestID, user string) {
	attrs := make([]attribute.KeyValue, 0, 2)
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	if user != "" {
		attrs = append(attrs, attribute.String(AttrUser, user))
	}
	span.SetAttributes(attrs...)
}

// SetRateLimitAttributes records an admission decision.
func SetRateLimitAttributes(span trace.Span, key string, allowed bool, remaining int64, retryAfterSeconds int64) {
	span.SetAttributes(
		attribute.String(AttrRateLimitKey, key),
		attribute.Bool(AttrRateLimitAllowed, allowed),
		attribute.Int64(AttrRateLimitRemaining, remaining),
	)
	if !allowed {
		span.SetAttributes(attribute.Int64(AttrRateLimitRetryAfter, retryAfterSeconds))
	}
}

// SetHTTPAttributes records the method, matched route and response status.
func SetHTTPAttributes(span trace.Span, method, route string, status int) {
	span.SetAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.Int(AttrHTTPStatus, status),
	)
}
