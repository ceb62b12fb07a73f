package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"webeng-hq/hello/pkg/telemetry/logging"
	"webeng-hq/hello/pkg/telemetry/metrics"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code before writing.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called if not already done.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging logs one "request completed" record per request and records the
// request in collector. The record level follows the status: error for
// 5xx, warn for 4xx, info otherwise. collector may be nil.
//
//	{
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "GET",
//	  "path": "/api/hello",
//	  "route": "/api/hello",
//	  "status": 200,
//	  "latency_ms": 3,
//	  "request_id": "0b6c...",
//	  "client_ip": "192.0.2.10"
//	}
func Logging(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			ctx := context.WithValue(r.Context(), StartTimeKey, startTime)
			ctx = logging.WithClientIP(ctx, ClientKey(r))
			ctx, _ = withRouteInfo(ctx)

			rw := newResponseWriter(w)

			slog.DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"user_agent", r.UserAgent(),
			)

			collector.InFlight(1)
			next.ServeHTTP(rw, r.WithContext(ctx))
			collector.InFlight(-1)

			latency := time.Since(startTime)
			route := Route(ctx)
			collector.RecordRequest(r.Method, route, rw.statusCode, latency)

			logLevel := slog.LevelInfo
			if rw.statusCode >= 500 {
				logLevel = slog.LevelError
			} else if rw.statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			slog.Log(ctx, logLevel, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", rw.statusCode,
				"latency_ms", latency.Milliseconds(),
				"request_id", rw.Header().Get(RequestIDHeader),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// GetStartTime extracts the request start time from the context.
// Returns zero time if not found.
func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}

// ClientKey returns the host part of r.RemoteAddr, or RemoteAddr unchanged
// when it has no port. Forwarding headers are ignored.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
