package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "HELLO_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// An empty path yields the default configuration. The configuration is not
// modified by environment variables; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	return load(path, false)
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention HELLO_SECTION_FIELD (e.g., HELLO_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply environment variable overrides
// 3. Apply default values (resolving the profile)
// 4. Resolve ${secret:name} references
// 5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, withEnv bool) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	// Overrides go before defaults so that HELLO_PROFILE takes part in
	// profile resolution.
	if withEnv {
		applyEnvOverrides(&cfg)
	}

	ApplyDefaults(&cfg)

	if err := resolveSecrets(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to resolve secrets: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format HELLO_SECTION_FIELD. Values that fail
// to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	envString("PROFILE", &cfg.Profile)

	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val := os.Getenv(EnvPrefix + "SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}

	envBool("SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	envString("SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	envString("SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)
	envString("SERVER_TLS_MIN_VERSION", &cfg.Server.TLS.MinVersion)
	envString("SECRETS_DIR", &cfg.SecretsDir)

	// Rate limit overrides
	if val := os.Getenv(EnvPrefix + "RATELIMIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.Enabled = Bool(b)
		}
	}
	envInt64("RATELIMIT_CAPACITY", &cfg.RateLimit.Capacity)
	envDuration("RATELIMIT_REFILL_PERIOD", &cfg.RateLimit.RefillPeriod)
	envInt64("RATELIMIT_REFILL_AMOUNT", &cfg.RateLimit.RefillAmount)
	envDuration("RATELIMIT_IDLE_EVICTION_TIMEOUT", &cfg.RateLimit.IdleEvictionTimeout)
	envDuration("RATELIMIT_CLEANUP_INTERVAL", &cfg.RateLimit.CleanupInterval)
	envString("RATELIMIT_PROTECTED_PATH_PREFIX", &cfg.RateLimit.ProtectedPathPrefix)
	envString("RATELIMIT_STATS_BACKEND", &cfg.RateLimit.Stats.Backend)
	envString("RATELIMIT_STATS_REDIS_ADDRESS", &cfg.RateLimit.Stats.Redis.Address)
	envString("RATELIMIT_STATS_REDIS_PASSWORD", &cfg.RateLimit.Stats.Redis.Password)

	// Storage overrides
	envString("STORAGE_BACKEND", &cfg.Storage.Backend)
	envString("STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	envString("STORAGE_SQLITE_DRIVER", &cfg.Storage.SQLite.Driver)

	// Session overrides
	envString("SESSION_COOKIE_NAME", &cfg.Session.CookieName)
	envDuration("SESSION_TTL", &cfg.Session.TTL)
	envBool("SESSION_SECURE", &cfg.Session.Secure)

	// Greeting overrides
	envString("GREETING_TIME_ZONE", &cfg.Greeting.TimeZone)
	envString("GREETING_WELCOME_MESSAGE", &cfg.Greeting.WelcomeMessage)

	// History overrides
	if val := os.Getenv(EnvPrefix + "HISTORY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.RetentionDays = i
		}
	}
	envString("HISTORY_PRUNE_SCHEDULE", &cfg.History.PruneSchedule)

	// Web overrides
	envString("WEB_TEMPLATES_DIR", &cfg.Web.TemplatesDir)
	envBool("WEB_WATCH_TEMPLATES", &cfg.Web.WatchTemplates)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = Bool(b)
		}
	}
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = strings.TrimSpace(val)
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt64(name string, dst *int64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
