package server

import (
	"net/http"

	"webeng-hq/hello/pkg/ratelimit/stats"
	"webeng-hq/hello/pkg/telemetry/health"
	"webeng-hq/hello/pkg/web/api"
	"webeng-hq/hello/pkg/web/middleware"
	"webeng-hq/hello/pkg/web/pages"
	"webeng-hq/hello/pkg/web/types"
)

// RateLimitStatsPath serves the admission totals of the recorder.
const RateLimitStatsPath = "/ratelimit/stats"

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	api.New(s.greetings, s.users, s.statistics, s.sessions,
		api.WithSessionRevoker(s.sessions),
		api.WithLogger(s.base),
	).Register(mux)
	pages.New(s.renderer, s.greetings, s.users, s.statistics, s.sessions,
		s.config.Greeting.WelcomeMessage,
	).Register(mux)

	hc := s.config.Telemetry.Health
	s.health.Register(mux, hc.LivenessPath, hc.ReadinessPath)
	mux.Handle("GET /version", health.VersionHandler(s.info.Version, s.info.Commit, s.info.BuildTime))

	if s.collector.Enabled() {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}
	if reader, ok := s.recorder.(stats.Reader); ok {
		mux.HandleFunc("GET "+RateLimitStatsPath, func(w http.ResponseWriter, r *http.Request) {
			total, err := reader.Total(r.Context())
			if err != nil {
				s.logger.WarnContext(r.Context(), "failed to read admission totals", "error", err)
				_ = types.WriteError(w, types.NewErrorResponse("statistics backend unavailable", types.ErrorTypeServiceUnavailable, "", ""))
				return
			}
			_ = types.WriteJSON(w, http.StatusOK, total)
		})
	}

	// Innermost first; Recovery ends up outermost.
	var handler http.Handler = middleware.CaptureRoute(mux)
	handler = middleware.RateLimit(s.limiter, middleware.RateLimitConfig{
		Enabled:    s.config.RateLimit.IsEnabled(),
		PathPrefix: s.config.RateLimit.ProtectedPathPrefix,
		Routes:     mux,
	}, s.recorder)(handler)
	handler = middleware.Tracing(s.tracer)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(s.collector)(handler)
	handler = middleware.Recovery(handler)

	return handler
}
