package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(MinimalConfig()); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad profile", func(c *Config) { c.Profile = "prod" }, "profile"},
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
		{"listen address without port", func(c *Config) { c.Server.ListenAddress = "localhost" }, "server.listen_address"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "server.read_timeout"},
		{"zero capacity", func(c *Config) { c.RateLimit.Capacity = 0 }, "ratelimit.capacity"},
		{"zero refill amount", func(c *Config) { c.RateLimit.RefillAmount = 0 }, "ratelimit.refill_amount"},
		{"zero refill period", func(c *Config) { c.RateLimit.RefillPeriod = 0 }, "ratelimit.refill_period"},
		{"zero idle eviction", func(c *Config) { c.RateLimit.IdleEvictionTimeout = 0 }, "ratelimit.idle_eviction_timeout"},
		{"relative prefix", func(c *Config) { c.RateLimit.ProtectedPathPrefix = "api/" }, "ratelimit.protected_path_prefix"},
		{"unknown stats backend", func(c *Config) { c.RateLimit.Stats.Backend = "kafka" }, "ratelimit.stats.backend"},
		{"redis without address", func(c *Config) {
			c.RateLimit.Stats.Backend = "redis"
			c.RateLimit.Stats.Redis.Address = ""
		}, "ratelimit.stats.redis.address"},
		{"unknown storage backend", func(c *Config) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"unknown sqlite driver", func(c *Config) {
			c.Storage.Backend = "sqlite"
			c.Storage.SQLite.Driver = "pgx"
		}, "storage.sqlite.driver"},
		{"bad journal mode", func(c *Config) {
			c.Storage.Backend = "sqlite"
			c.Storage.SQLite.JournalMode = "FAST"
		}, "storage.sqlite.journal_mode"},
		{"cookie name with space", func(c *Config) { c.Session.CookieName = "my session" }, "session.cookie_name"},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, "session.ttl"},
		{"unknown time zone", func(c *Config) { c.Greeting.TimeZone = "Mars/Olympus" }, "greeting.time_zone"},
		{"negative retention", func(c *Config) { c.History.RetentionDays = -1 }, "history.retention_days"},
		{"schedule without retention", func(c *Config) { c.History.PruneSchedule = "0 3 * * *" }, "history.prune_schedule"},
		{"bad schedule", func(c *Config) {
			c.History.RetentionDays = 7
			c.History.PruneSchedule = "every day"
		}, "history.prune_schedule"},
		{"watch without dir", func(c *Config) { c.Web.WatchTemplates = true }, "web.watch_templates"},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"bad log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"sample ratio above one", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"relative liveness path", func(c *Config) { c.Telemetry.Health.LivenessPath = "health" }, "telemetry.health.liveness_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MinimalConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}

			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := MinimalConfig()
	cfg.Server.ListenAddress = ""
	cfg.RateLimit.Capacity = 0
	cfg.Telemetry.Logging.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d", len(verr.Errors))
	}

	msg := verr.Error()
	if !strings.Contains(msg, "3 errors") {
		t.Errorf("expected error count in message, got %q", msg)
	}
	for _, field := range []string{"server.listen_address", "ratelimit.capacity", "telemetry.logging.level"} {
		if !strings.Contains(msg, field) {
			t.Errorf("expected %q in message", field)
		}
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := ValidationError{Errors: []FieldError{{Field: "a.b", Message: "bad"}}}
	if got := err.Error(); got != "configuration validation failed: a.b: bad" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestValidate_SQLiteDrivers(t *testing.T) {
	for _, driver := range []string{"sqlite", "sqlite3"} {
		cfg := MinimalConfig()
		cfg.Storage.Backend = "sqlite"
		cfg.Storage.SQLite.Driver = driver

		if err := Validate(cfg); err != nil {
			t.Errorf("driver %q: unexpected error %v", driver, err)
		}
	}
}
