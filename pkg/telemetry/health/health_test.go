package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"
)

func newTestChecker(timeout time.Duration) *Checker {
	return New(timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ok(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func TestNew(t *testing.T) {
	if got := newTestChecker(0).checkTimeout; got != DefaultCheckTimeout {
		t.Errorf("expected default timeout, got %v", got)
	}
	if got := newTestChecker(time.Second).checkTimeout; got != time.Second {
		t.Errorf("expected 1s timeout, got %v", got)
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	checker := newTestChecker(time.Second)
	checker.RegisterCheck("storage", ok)
	checker.RegisterOptionalCheck("ratelimit_stats", ok)

	if got := checker.Checks(); !slices.Equal(got, []string{"ratelimit_stats", "storage"}) {
		t.Errorf("unexpected checks %v", got)
	}

	checker.UnregisterCheck("storage")
	if got := checker.Checks(); !slices.Equal(got, []string{"ratelimit_stats"}) {
		t.Errorf("unexpected checks after unregister %v", got)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name     string
		critical CheckFunc
		optional CheckFunc
		want     string
		ready    bool
	}{
		{"all healthy", ok, ok, StatusReady, true},
		{"optional failing", ok, failing("redis down"), StatusDegraded, true},
		{"critical failing", failing("db locked"), ok, StatusUnhealthy, false},
		{"both failing", failing("db locked"), failing("redis down"), StatusUnhealthy, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newTestChecker(time.Second)
			checker.RegisterCheck("storage", tt.critical)
			checker.RegisterOptionalCheck("ratelimit_stats", tt.optional)

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, status.Status)
			}
			if status.Ready() != tt.ready {
				t.Errorf("expected Ready() = %v", tt.ready)
			}
			if len(status.Checks) != 2 {
				t.Errorf("expected 2 check results, got %d", len(status.Checks))
			}
			if !status.Checks["storage"].Critical || status.Checks["ratelimit_stats"].Critical {
				t.Error("critical flags not reported")
			}
		})
	}
}

func TestCheckReadiness_NoChecks(t *testing.T) {
	status := newTestChecker(time.Second).CheckReadiness(context.Background())
	if status.Status != StatusReady {
		t.Errorf("expected ready without checks, got %q", status.Status)
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := newTestChecker(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != "health check timeout" {
		t.Errorf("expected timeout result, got %+v", result)
	}
}

func TestCheckReadiness_Draining(t *testing.T) {
	checker := newTestChecker(time.Second)
	checker.RegisterCheck("storage", ok)
	checker.SetDraining(true)

	status := checker.CheckReadiness(context.Background())
	if status.Status != StatusDraining || status.Ready() {
		t.Errorf("expected draining and not ready, got %q", status.Status)
	}

	checker.SetDraining(false)
	if got := checker.CheckReadiness(context.Background()).Status; got != StatusReady {
		t.Errorf("expected ready after draining cleared, got %q", got)
	}
}

func TestHandlers(t *testing.T) {
	checker := newTestChecker(time.Second)
	mux := http.NewServeMux()
	checker.Register(mux, "/health", "/ready")

	tests := []struct {
		name     string
		method   string
		path     string
		setup    func()
		wantCode int
		wantBody string
	}{
		{"liveness", http.MethodGet, "/health", nil, http.StatusOK, StatusOK},
		{"readiness ready", http.MethodGet, "/ready", nil, http.StatusOK, StatusReady},
		{"readiness unhealthy", http.MethodGet, "/ready", func() {
			checker.RegisterCheck("storage", failing("closed"))
		}, http.StatusServiceUnavailable, StatusUnhealthy},
		{"liveness while unhealthy", http.MethodGet, "/health", nil, http.StatusOK, StatusOK},
		{"head has no body", http.MethodHead, "/health", nil, http.StatusOK, ""},
		{"post not routed", http.MethodPost, "/health", nil, http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantBody == "" {
				if tt.method == http.MethodHead && rec.Body.Len() != 0 {
					t.Errorf("expected empty body for HEAD, got %q", rec.Body.String())
				}
				return
			}
			var body Status
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantBody {
				t.Errorf("expected status %q, got %q", tt.wantBody, body.Status)
			}
			if rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.3", "abc123", "2025-01-01").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("unexpected version info %+v", info)
	}
}
