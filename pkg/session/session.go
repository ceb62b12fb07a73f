// Package session keeps server-side login sessions keyed by a cookie.
//
// Sessions live in memory and expire after an idle TTL. The cookie carries
// only a random UUID; the username and role stay on the server.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"webeng-hq/hello/pkg/config"
	"webeng-hq/hello/pkg/users"

	"github.com/google/uuid"
)

// Session is a logged-in user.
type Session struct {
	ID        string
	Username  string
	Role      users.Role
	CreatedAt time.Time
	LastSeen  time.Time
}

// IsAdmin reports whether the session user has the ADMIN role.
func (s *Session) IsAdmin() bool {
	return s.Role == users.RoleAdmin
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// Manager creates, resolves and destroys sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewManager creates a Manager from the session configuration.
func NewManager(cfg config.SessionConfig, opts ...Option) *Manager {
	m := &Manager{
		sessions:   make(map[string]*Session),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		now:        time.Now,
		logger:     slog.Default(),
	}
	if m.cookieName == "" {
		m.cookieName = config.DefaultSessionCookieName
	}
	if m.ttl <= 0 {
		m.ttl = config.DefaultSessionTTL
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")
	return m
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Create starts a session for username and sets the session cookie on w.
func (m *Manager) Create(w http.ResponseWriter, username string, role users.Role) *Session {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		Role:      role,
		CreatedAt: now,
		LastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Get resolves the session of r and refreshes its idle timer.
func (m *Manager) Get(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[c.Value]
	if !ok {
		return nil, false
	}
	if now.Sub(s.LastSeen) >= m.ttl {
		delete(m.sessions, s.ID)
		return nil, false
	}
	s.LastSeen = now
	cp := *s
	return &cp, true
}

// Identity returns the username and role of the session of r.
func (m *Manager) Identity(r *http.Request) (string, users.Role, bool) {
	s, ok := m.Get(r)
	if !ok {
		return "", "", false
	}
	return s.Username, s.Role, true
}

// Destroy ends the session of r, if any, and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(m.cookieName); err == nil {
		m.mu.Lock()
		delete(m.sessions, c.Value)
		m.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// DestroyUser ends every session of username.
func (m *Manager) DestroyUser(username string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.Username == username {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions, expired ones included until
// they are swept.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for at least the TTL and returns how many
// were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen) >= m.ttl {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				m.logger.Debug("expired sessions swept", "count", n)
			}
		}
	}
}
