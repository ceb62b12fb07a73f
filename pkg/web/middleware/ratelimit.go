package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"webeng-hq/hello/pkg/ratelimit"
	"webeng-hq/hello/pkg/ratelimit/stats"
	"webeng-hq/hello/pkg/telemetry/tracing"
	"webeng-hq/hello/pkg/web/types"
)

const (
	// RemainingHeader carries the tokens left after an admitted request.
	RemainingHeader = "X-Rate-Limit-Remaining"

	// RetryAfterHeader carries the whole seconds until a rejected client
	// may try again.
	RetryAfterHeader = "Retry-After"
)

// errLimiterFault reports a panic inside the limiter.
var errLimiterFault = errors.New("rate limiter fault")

// RateLimitConfig configures the admission gate.
type RateLimitConfig struct {
	// Enabled turns the gate on. A disabled gate is the identity.
	Enabled bool

	// PathPrefix selects the protected requests by r.URL.Path.
	PathPrefix string

	// Routes labels recorded decisions with the pattern a request matches.
	// Without it every decision is recorded under stats.OtherRoute.
	Routes RouteMatcher
}

// RouteMatcher reports the registered pattern that serves r, or "" when
// none does. *http.ServeMux implements it.
type RouteMatcher interface {
	Handler(r *http.Request) (h http.Handler, pattern string)
}

// RateLimit returns the admission gate. Requests whose path starts with
// cfg.PathPrefix consume one token from the bucket of their client
// address (see ClientKey):
//
//   - admitted: X-Rate-Limit-Remaining is set and next is called
//   - rejected: 429 with Retry-After and {"error":"Too Many Requests","retry_after":n}
//   - limiter fault: 500, the request is not admitted
//
// Decisions are reported to recorder on a best-effort basis; recorder may
// be nil. Record is called on the request path, so recorders that do I/O
// must be wrapped in a stats.AsyncRecorder.
func RateLimit(limiter *ratelimit.Limiter, cfg RateLimitConfig, recorder stats.Recorder) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	if recorder == nil {
		recorder = stats.Nop{}
	}
	tracer := otel.Tracer(tracing.InstrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, cfg.PathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracer.Start(r.Context(), "ratelimit.admit")
			key := ClientKey(r)

			decision, err := admit(limiter, key)
			if err != nil {
				tracing.SetStatus(span, err)
				span.End()
				slog.ErrorContext(ctx, "admission failed",
					"component", "web.ratelimit",
					"key", key,
					"error", err,
				)
				_ = types.WriteError(w, types.NewServerError("An internal error occurred. Please try again later."))
				return
			}

			tracing.SetRateLimitAttributes(span, key, decision.Allowed, decision.Remaining, decision.RetryAfterSeconds())
			span.End()

			record(ctx, recorder, stats.Event{
				Key:     key,
				Allowed: decision.Allowed,
				Route:   routeLabel(cfg.Routes, r),
				At:      time.Now(),
			})

			if !decision.Allowed {
				slog.DebugContext(ctx, "request rejected",
					"component", "web.ratelimit",
					"path", r.URL.Path,
					"error", decision.Err(),
				)
				retryAfter := decision.RetryAfterSeconds()
				w.Header().Set(RetryAfterHeader, strconv.FormatInt(retryAfter, 10))
				_ = types.WriteJSON(w, http.StatusTooManyRequests, types.NewRateLimitResponse(retryAfter))
				return
			}

			w.Header().Set(RemainingHeader, strconv.FormatInt(decision.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}

// routeLabel returns the pattern routes would serve r with. Requests that
// match nothing share stats.OtherRoute, so arbitrary paths never become
// labels.
func routeLabel(routes RouteMatcher, r *http.Request) string {
	if routes == nil {
		return stats.OtherRoute
	}
	if _, pattern := routes.Handler(r); pattern != "" {
		return pattern
	}
	return stats.OtherRoute
}

// admit runs the limiter, turning a panic into errLimiterFault.
func admit(limiter *ratelimit.Limiter, key string) (d ratelimit.Decision, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", errLimiterFault, p)
		}
	}()
	return limiter.Allow(key), nil
}

func record(ctx context.Context, recorder stats.Recorder, ev stats.Event) {
	if err := recorder.Record(ctx, ev); err != nil {
		slog.WarnContext(ctx, "failed to record admission decision",
			"component", "web.ratelimit",
			"error", err,
		)
	}
}
