package session

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webeng-hq/hello/pkg/config"
	"webeng-hq/hello/pkg/users"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(config.SessionConfig{CookieName: "sid", TTL: 30 * time.Minute},
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return m, clock
}

// login creates a session and returns a request carrying its cookie.
func login(t *testing.T, m *Manager, username string, role users.Role) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Create(rec, username, role)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestManager_CreateAndIdentity(t *testing.T) {
	m, _ := newTestManager(t)
	req, cookie := login(t, m, "alice", users.RoleAdmin)

	if cookie.Name != "sid" || !cookie.HttpOnly || cookie.Path != "/" {
		t.Errorf("unexpected cookie %+v", cookie)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", cookie.SameSite)
	}

	name, role, ok := m.Identity(req)
	if !ok || name != "alice" || role != users.RoleAdmin {
		t.Errorf("Identity() = %q, %q, %v", name, role, ok)
	}
}

func TestManager_NoCookie(t *testing.T) {
	m, _ := newTestManager(t)
	if _, _, ok := m.Identity(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Error("expected no identity without cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	if _, ok := m.Get(req); ok {
		t.Error("expected unknown session ID rejected")
	}
}

func TestManager_IdleExpiry(t *testing.T) {
	m, clock := newTestManager(t)
	req, _ := login(t, m, "bob", users.RoleUser)

	clock.Advance(29 * time.Minute)
	if _, ok := m.Get(req); !ok {
		t.Fatal("expected session alive before TTL")
	}

	// Access refreshed the idle timer.
	clock.Advance(29 * time.Minute)
	if _, ok := m.Get(req); !ok {
		t.Fatal("expected session alive after refresh")
	}

	clock.Advance(30 * time.Minute)
	if _, ok := m.Get(req); ok {
		t.Error("expected session expired")
	}
	if m.Len() != 0 {
		t.Errorf("expected expired session removed, got %d", m.Len())
	}
}

func TestManager_Destroy(t *testing.T) {
	m, _ := newTestManager(t)
	req, _ := login(t, m, "bob", users.RoleUser)

	rec := httptest.NewRecorder()
	m.Destroy(rec, req)

	if _, ok := m.Get(req); ok {
		t.Error("expected session destroyed")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected expiring cookie, got %+v", cookies)
	}
}

func TestManager_DestroyUser(t *testing.T) {
	m, _ := newTestManager(t)
	login(t, m, "bob", users.RoleUser)
	login(t, m, "bob", users.RoleUser)
	login(t, m, "alice", users.RoleAdmin)

	if n := m.DestroyUser("bob"); n != 2 {
		t.Errorf("expected 2 sessions destroyed, got %d", n)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 session left, got %d", m.Len())
	}
}

func TestManager_Sweep(t *testing.T) {
	m, clock := newTestManager(t)
	login(t, m, "old", users.RoleUser)
	clock.Advance(20 * time.Minute)
	login(t, m, "new", users.RoleUser)

	if n := m.Sweep(clock.Now().Add(15 * time.Minute)); n != 1 {
		t.Errorf("expected 1 swept, got %d", n)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 session left, got %d", m.Len())
	}
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(config.SessionConfig{})
	if m.CookieName() != config.DefaultSessionCookieName {
		t.Errorf("expected default cookie name, got %q", m.CookieName())
	}
	if m.ttl != config.DefaultSessionTTL {
		t.Errorf("expected default TTL, got %v", m.ttl)
	}
}
