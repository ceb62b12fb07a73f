package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"webeng-hq/hello/pkg/telemetry/logging"
	"webeng-hq/hello/pkg/telemetry/tracing"
)

// Tracing starts a server span per request, continuing any trace context
// carried in the request headers. The span is renamed to the matched route
// once the handler returns.
func Tracing(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tracing.Extract(r.Context(), r.Header)
			ctx, _ = withRouteInfo(ctx)
			ctx, span := tracer.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			tracing.SetRequestAttributes(span, logging.GetRequestID(ctx), "")

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			route := Route(ctx)
			if route != "" {
				span.SetName(r.Method + " " + route)
			}
			tracing.SetHTTPAttributes(span, r.Method, route, rw.statusCode)
			if rw.statusCode >= 500 {
				span.SetStatus(codes.Error, fmt.Sprintf("status %d", rw.statusCode))
			}
		})
	}
}
