package config

import (
	"fmt"
	"net"
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo for greeting.time_zone

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Profile != ProfileDefault && cfg.Profile != ProfileTest {
		errs = append(errs, FieldError{
			Field:   "profile",
			Message: fmt.Sprintf("invalid profile %q: must be 'default' or 'test'", cfg.Profile),
		})
	}

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateSession(&cfg.Session)...)
	errs = append(errs, validateGreeting(&cfg.Greeting)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateWeb(&cfg.Web)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	for field, d := range map[string]time.Duration{
		"server.read_timeout":     cfg.ReadTimeout,
		"server.write_timeout":    cfg.WriteTimeout,
		"server.idle_timeout":     cfg.IdleTimeout,
		"server.shutdown_timeout": cfg.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "timeout must be positive",
			})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}

	return append(errs, validateTLS(&cfg.TLS)...)
}

func validateTLS(cfg *TLSConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}
	var errs []FieldError

	if cfg.CertFile == "" {
		errs = append(errs, FieldError{
			Field:   "server.tls.cert_file",
			Message: "cert_file is required when TLS is enabled",
		})
	}
	if cfg.KeyFile == "" {
		errs = append(errs, FieldError{
			Field:   "server.tls.key_file",
			Message: "key_file is required when TLS is enabled",
		})
	}
	if cfg.MinVersion != "1.2" && cfg.MinVersion != "1.3" {
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("invalid TLS version %q: must be '1.2' or '1.3'", cfg.MinVersion),
		})
	}
	if cfg.ReloadInterval <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.tls.reload_interval",
			Message: "reload interval must be positive",
		})
	}

	return errs
}

func validateRateLimit(cfg *RateLimitConfig) []FieldError {
	var errs []FieldError

	if cfg.Capacity <= 0 {
		errs = append(errs, FieldError{
			Field:   "ratelimit.capacity",
			Message: "capacity must be positive",
		})
	}
	if cfg.RefillAmount <= 0 {
		errs = append(errs, FieldError{
			Field:   "ratelimit.refill_amount",
			Message: "refill amount must be positive",
		})
	}
	if cfg.RefillPeriod <= 0 {
		errs = append(errs, FieldError{
			Field:   "ratelimit.refill_period",
			Message: "refill period must be positive",
		})
	}
	if cfg.IdleEvictionTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "ratelimit.idle_eviction_timeout",
			Message: "idle eviction timeout must be positive",
		})
	}
	if !strings.HasPrefix(cfg.ProtectedPathPrefix, "/") {
		errs = append(errs, FieldError{
			Field:   "ratelimit.protected_path_prefix",
			Message: fmt.Sprintf("protected path prefix %q must start with '/'", cfg.ProtectedPathPrefix),
		})
	}

	switch cfg.Stats.Backend {
	case "none", "memory":
	case "redis":
		if cfg.Stats.Redis.Address == "" {
			errs = append(errs, FieldError{
				Field:   "ratelimit.stats.redis.address",
				Message: "redis address is required when stats backend is 'redis'",
			})
		}
		if cfg.Stats.Redis.TTL < 0 {
			errs = append(errs, FieldError{
				Field:   "ratelimit.stats.redis.ttl",
				Message: "ttl must be non-negative",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "ratelimit.stats.backend",
			Message: fmt.Sprintf("invalid stats backend %q: must be 'none', 'memory', or 'redis'", cfg.Stats.Backend),
		})
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.path",
				Message: "sqlite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
		if cfg.SQLite.MaxOpenConns < 1 {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.max_open_conns",
				Message: "max open connections must be at least 1",
			})
		}
		if cfg.SQLite.MaxIdleConns > cfg.SQLite.MaxOpenConns {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.max_idle_conns",
				Message: "max idle connections cannot exceed max open connections",
			})
		}
		validModes := map[string]bool{"WAL": true, "DELETE": true, "TRUNCATE": true, "MEMORY": true}
		if !validModes[strings.ToUpper(cfg.SQLite.JournalMode)] {
			errs = append(errs, FieldError{
				Field:   "storage.sqlite.journal_mode",
				Message: fmt.Sprintf("invalid journal mode %q", cfg.SQLite.JournalMode),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	return errs
}

func validateSession(cfg *SessionConfig) []FieldError {
	var errs []FieldError

	if cfg.CookieName == "" || strings.ContainsAny(cfg.CookieName, " ;,=") {
		errs = append(errs, FieldError{
			Field:   "session.cookie_name",
			Message: fmt.Sprintf("invalid cookie name %q", cfg.CookieName),
		})
	}
	if cfg.TTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "session.ttl",
			Message: "session ttl must be positive",
		})
	}

	return errs
}

func validateGreeting(cfg *GreetingConfig) []FieldError {
	var errs []FieldError

	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		errs = append(errs, FieldError{
			Field:   "greeting.time_zone",
			Message: fmt.Sprintf("unknown time zone %q: %v", cfg.TimeZone, err),
		})
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must be non-negative",
		})
	}

	if cfg.PruneSchedule != "" {
		if cfg.RetentionDays == 0 {
			errs = append(errs, FieldError{
				Field:   "history.prune_schedule",
				Message: "prune schedule requires retention_days > 0",
			})
		}
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "history.prune_schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.PruneSchedule, err),
			})
		}
	}

	return errs
}

func validateWeb(cfg *WebConfig) []FieldError {
	var errs []FieldError

	if cfg.WatchTemplates && cfg.TemplatesDir == "" {
		errs = append(errs, FieldError{
			Field:   "web.watch_templates",
			Message: "watching templates requires templates_dir",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.IsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.liveness_path",
			Message: "liveness path must start with '/'",
		})
	}
	if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.readiness_path",
			Message: "readiness path must start with '/'",
		})
	}

	return errs
}
