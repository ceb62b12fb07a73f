package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"webeng-hq/hello/pkg/greeting"
	"webeng-hq/hello/pkg/statistics"
	"webeng-hq/hello/pkg/users"
	"webeng-hq/hello/pkg/web/types"
)

// Identity resolves the session of a request.
type Identity interface {
	Identity(r *http.Request) (username string, role users.Role, ok bool)
}

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	DestroyUser(username string) int
}

// Handler serves the API routes.
type Handler struct {
	greetings  *greeting.Service
	users      *users.Service
	statistics *statistics.Service
	identity   Identity
	revoker    SessionRevoker
	logger     *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithSessionRevoker ends the sessions of deleted users.
func WithSessionRevoker(r SessionRevoker) Option {
	return func(h *Handler) { h.revoker = r }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates a Handler.
func New(g *greeting.Service, u *users.Service, s *statistics.Service, identity Identity, opts ...Option) *Handler {
	h := &Handler{
		greetings:  g,
		users:      u,
		statistics: s,
		identity:   identity,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "web.api")
	return h
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/hello", h.hello)
	mux.HandleFunc("GET /api/history", h.allHistory)
	mux.HandleFunc("GET /api/history/{username}", h.userHistory)
	mux.HandleFunc("GET /api/statistics", h.getStatistics)
	mux.HandleFunc("POST /api/users", h.createUser)
	mux.HandleFunc("POST /api/users/login", h.login)
	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("GET /api/users/{username}", h.getUser)
	mux.HandleFunc("DELETE /api/users/{username}", h.deleteUser)
}

// HelloResponse is the body of GET /api/hello.
type HelloResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) hello(w http.ResponseWriter, r *http.Request) {
	message, at, err := h.greetings.Greet(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.internalError(r.Context(), w, "greet", err)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, HelloResponse{Message: message, Timestamp: at.UTC()})
}

func (h *Handler) getStatistics(w http.ResponseWriter, r *http.Request) {
	if _, role, ok := h.identity.Identity(r); !ok || role != users.RoleAdmin {
		h.writeError(r.Context(), w, types.NewPermissionDeniedError("Forbidden: Admins only"))
		return
	}

	stats, err := h.statistics.Get(r.Context())
	if err != nil {
		h.internalError(r.Context(), w, "statistics", err)
		return
	}
	h.writeJSON(r.Context(), w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	if err := types.WriteJSON(w, status, v); err != nil {
		h.logger.WarnContext(ctx, "failed to write response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, resp *types.ErrorResponse) {
	if err := types.WriteError(w, resp); err != nil {
		h.logger.WarnContext(ctx, "failed to write error response", "error", err)
	}
}

func (h *Handler) internalError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.ErrorContext(ctx, "request failed", "op", op, "error", err)
	h.writeError(ctx, w, types.NewServerError("An internal error occurred. Please try again later."))
}
