package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8080"
  read_timeout: "60s"

ratelimit:
  capacity: 10
  refill_period: "30s"
  refill_amount: 2
  idle_eviction_timeout: "5m"
  protected_path_prefix: "/v1/"

storage:
  backend: "sqlite"
  sqlite:
    path: "./test-hello.db"
    driver: "sqlite3"

history:
  retention_days: 30
  prune_schedule: "0 3 * * *"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8080" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:8080", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("expected read timeout 60s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.RateLimit.Capacity != 10 || cfg.RateLimit.RefillAmount != 2 {
		t.Errorf("unexpected bucket %d/%d", cfg.RateLimit.Capacity, cfg.RateLimit.RefillAmount)
	}
	if cfg.RateLimit.RefillPeriod != 30*time.Second {
		t.Errorf("expected refill period 30s, got %v", cfg.RateLimit.RefillPeriod)
	}
	if cfg.RateLimit.IdleEvictionTimeout != 5*time.Minute {
		t.Errorf("expected idle eviction 5m, got %v", cfg.RateLimit.IdleEvictionTimeout)
	}
	if cfg.RateLimit.ProtectedPathPrefix != "/v1/" {
		t.Errorf("expected prefix /v1/, got %q", cfg.RateLimit.ProtectedPathPrefix)
	}
	if cfg.Storage.SQLite.Driver != "sqlite3" {
		t.Errorf("expected sqlite3 driver, got %q", cfg.Storage.SQLite.Driver)
	}
	if cfg.History.PruneSchedule != "0 3 * * *" {
		t.Errorf("unexpected prune schedule %q", cfg.History.PruneSchedule)
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("expected text format, got %q", cfg.Telemetry.Logging.Format)
	}

	// Defaults fill the rest.
	if cfg.RateLimit.CleanupInterval != DefaultRateLimitCleanupInterval {
		t.Errorf("expected default cleanup interval, got %v", cfg.RateLimit.CleanupInterval)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected defaults for empty path, got %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server:\n  listen_address: [unclosed\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
ratelimit:
  capacity: -1
storage:
  backend: "postgres"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %d: %v", len(verr.Errors), verr)
	}
}

func TestLoadConfig_TestProfile(t *testing.T) {
	path := writeConfig(t, "profile: test\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.RateLimit.IsEnabled() {
		t.Error("expected rate limiting disabled under test profile")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
ratelimit:
  capacity: 10
`)

	t.Setenv("HELLO_SERVER_LISTEN_ADDRESS", "0.0.0.0:9090")
	t.Setenv("HELLO_RATELIMIT_CAPACITY", "20")
	t.Setenv("HELLO_RATELIMIT_REFILL_PERIOD", "2m")
	t.Setenv("HELLO_STORAGE_BACKEND", "memory")
	t.Setenv("HELLO_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("HELLO_TELEMETRY_METRICS_ENABLED", "false")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("expected env listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.RateLimit.Capacity != 20 {
		t.Errorf("expected capacity 20, got %d", cfg.RateLimit.Capacity)
	}
	if cfg.RateLimit.RefillPeriod != 2*time.Minute {
		t.Errorf("expected refill period 2m, got %v", cfg.RateLimit.RefillPeriod)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected warn level, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("expected metrics disabled by env")
	}
}

func TestLoadConfigWithEnvOverrides_Profile(t *testing.T) {
	t.Setenv("HELLO_PROFILE", "test")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.RateLimit.IsEnabled() {
		t.Error("expected env profile to disable rate limiting")
	}

	t.Setenv("HELLO_RATELIMIT_ENABLED", "true")
	cfg, err = LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !cfg.RateLimit.IsEnabled() {
		t.Error("expected explicit enable to win over test profile")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("HELLO_RATELIMIT_CAPACITY", "lots")
	t.Setenv("HELLO_SERVER_READ_TIMEOUT", "soon")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.RateLimit.Capacity != DefaultRateLimitCapacity {
		t.Errorf("expected default capacity, got %d", cfg.RateLimit.Capacity)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
}

func TestLoadConfig_SecretReferences(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "redis-password"), []byte("file-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HELLO_SECRET_REDIS_HOST", "cache.internal:6379")

	path := writeConfig(t, `
secrets_dir: `+dir+`
storage:
  backend: memory
ratelimit:
  stats:
    backend: redis
    redis:
      address: "${secret:redis-host}"
      password: "${secret:redis-password}"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got := cfg.RateLimit.Stats.Redis.Password; got != "file-secret" {
		t.Errorf("password = %q, want file-secret", got)
	}
	if got := cfg.RateLimit.Stats.Redis.Address; got != "cache.internal:6379" {
		t.Errorf("address = %q, want value from environment", got)
	}
}

func TestLoadConfig_UnresolvedSecret(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: memory
ratelimit:
  stats:
    redis:
      password: "${secret:does-not-exist}"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for unresolved secret")
	}
	if !strings.Contains(err.Error(), "ratelimit.stats.redis.password") {
		t.Errorf("expected field name in error, got %v", err)
	}
}

func TestLoadConfig_TLS(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "enabled without files",
			yaml:    "server:\n  tls:\n    enabled: true\n",
			wantErr: "server.tls.cert_file",
		},
		{
			name:    "bad version",
			yaml:    "server:\n  tls:\n    enabled: true\n    cert_file: c.pem\n    key_file: k.pem\n    min_version: \"1.0\"\n",
			wantErr: "server.tls.min_version",
		},
		{
			name: "disabled ignores fields",
			yaml: "server:\n  tls:\n    min_version: \"1.0\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "storage:\n  backend: memory\n"+tt.yaml)
			cfg, err := LoadConfig(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("LoadConfig() error = %v", err)
				}
				if cfg.Server.TLS.ReloadInterval != DefaultTLSReloadInterval {
					t.Errorf("ReloadInterval = %v", cfg.Server.TLS.ReloadInterval)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
