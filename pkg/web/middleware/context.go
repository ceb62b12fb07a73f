package middleware

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// StartTimeKey stores the request start time for latency calculation.
	StartTimeKey contextKey = "start_time"

	// routeKey stores the *routeInfo filled in by CaptureRoute.
	routeKey contextKey = "route"
)

// routeInfo is written by CaptureRoute once the mux has matched a pattern
// and read by the outer middleware after the handler returns.
type routeInfo struct {
	pattern string
}

func withRouteInfo(ctx context.Context) (context.Context, *routeInfo) {
	if info, ok := ctx.Value(routeKey).(*routeInfo); ok {
		return ctx, info
	}
	info := &routeInfo{}
	return context.WithValue(ctx, routeKey, info), info
}

// CaptureRoute wraps the mux so that the pattern it matched is visible to
// the middleware around it. It must be the innermost handler of the chain.
func CaptureRoute(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if info, ok := r.Context().Value(routeKey).(*routeInfo); ok {
			info.pattern = r.Pattern
		}
	})
}

// Route returns the matched route of the request in ctx without its method
// prefix, or "" when no pattern matched or the request has not been served
// yet.
func Route(ctx context.Context) string {
	info, ok := ctx.Value(routeKey).(*routeInfo)
	if !ok {
		return ""
	}
	return routeFromPattern(info.pattern)
}

func routeFromPattern(pattern string) string {
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return strings.TrimSpace(path)
	}
	return pattern
}
