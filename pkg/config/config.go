package config

import "time"

// Profiles select environment-specific defaults.
const (
	ProfileDefault = "default"
	ProfileTest    = "test"
)

// Config is the root configuration structure for the hello server.
// It contains all configuration sections for the HTTP server, admission
// control, persistence, sessions, greetings, web pages and telemetry.
type Config struct {
	// Profile selects environment-specific defaults.
	// Options: "default", "test"
	// The "test" profile disables rate limiting unless ratelimit.enabled
	// is set explicitly.
	// Default: "default"
	Profile string `yaml:"profile"`

	// SecretsDir is a directory of secret files, one secret per file, used
	// to resolve ${secret:name} references. Secrets are also looked up in
	// HELLO_SECRET_<NAME> environment variables.
	SecretsDir string `yaml:"secrets_dir"`

	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// RateLimit contains per-client admission control for the JSON API.
	RateLimit RateLimitConfig `yaml:"ratelimit"`

	// Storage selects and configures the persistence backend for users and
	// greeting history.
	Storage StorageConfig `yaml:"storage"`

	// Session contains login session configuration.
	Session SessionConfig `yaml:"session"`

	// Greeting contains greeting message configuration.
	Greeting GreetingConfig `yaml:"greeting"`

	// History contains greeting history retention configuration.
	History HistoryConfig `yaml:"history"`

	// Web contains HTML page rendering configuration.
	Web WebConfig `yaml:"web"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// TLS enables HTTPS on the listener.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains HTTPS configuration. The certificate and key are
// re-read when their files change on disk.
type TLSConfig struct {
	// Enabled serves HTTPS instead of plain HTTP.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum accepted protocol version.
	// Options: "1.2", "1.3"
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// CipherSuites restricts the TLS 1.2 cipher suites. Empty means Go's
	// defaults.
	CipherSuites []string `yaml:"cipher_suites"`

	// ReloadInterval is how often the certificate files are checked for
	// changes.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// RateLimitConfig configures the token bucket admission gate.
type RateLimitConfig struct {
	// Enabled turns the admission gate on or off. When unset it defaults
	// to true, except under the "test" profile.
	Enabled *bool `yaml:"enabled"`

	// Capacity is the maximum number of tokens per client.
	// Default: 5
	Capacity int64 `yaml:"capacity"`

	// RefillPeriod is the length of one refill period.
	// Default: 60s
	RefillPeriod time.Duration `yaml:"refill_period"`

	// RefillAmount is the number of tokens added per whole elapsed period.
	// Default: 5
	RefillAmount int64 `yaml:"refill_amount"`

	// IdleEvictionTimeout is how long a client bucket is kept without
	// access before it is discarded.
	// Default: 600s
	IdleEvictionTimeout time.Duration `yaml:"idle_eviction_timeout"`

	// CleanupInterval is how often idle buckets are swept. A negative value
	// disables the background sweep and leaves only expiry on access.
	// Default: 60s
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// ProtectedPathPrefix selects the requests subject to admission.
	// Default: "/api/"
	ProtectedPathPrefix string `yaml:"protected_path_prefix"`

	// Stats configures where admission decisions are counted.
	Stats RateLimitStatsConfig `yaml:"stats"`
}

// IsEnabled reports whether the admission gate is on.
func (c RateLimitConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RateLimitStatsConfig configures the admission statistics sink.
type RateLimitStatsConfig struct {
	// Backend selects the sink.
	// Options: "none", "memory", "redis"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Redis contains Redis sink configuration.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis connection and key layout settings.
type RedisConfig struct {
	// Address is the Redis server address.
	// Default: "localhost:6379"
	Address string `yaml:"address"`

	// Password is the Redis password, if any.
	Password string `yaml:"password"`

	// DB is the Redis database number.
	DB int `yaml:"db"`

	// Prefix is prepended to every key.
	// Default: "hello:ratelimit:stats"
	Prefix string `yaml:"prefix"`

	// TTL is the expiry of per-minute and per-client keys.
	// Default: 24h
	TTL time.Duration `yaml:"ttl"`

	// TrackKeys enables per-client counters.
	// Default: false
	TrackKeys bool `yaml:"track_keys"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend specifies the storage backend to use.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/hello.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// JournalMode is the SQLite journal mode.
	// Default: "WAL"
	JournalMode string `yaml:"journal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// SessionConfig contains login session configuration.
type SessionConfig struct {
	// CookieName is the name of the session cookie.
	// Default: "hello_session"
	CookieName string `yaml:"cookie_name"`

	// TTL is the idle lifetime of a session.
	// Default: 30m
	TTL time.Duration `yaml:"ttl"`

	// Secure marks the cookie as HTTPS-only.
	// Default: false
	Secure bool `yaml:"secure"`
}

// GreetingConfig contains greeting message configuration.
type GreetingConfig struct {
	// TimeZone is the IANA zone used to pick the time-of-day greeting.
	// Default: "Europe/Madrid"
	TimeZone string `yaml:"time_zone"`

	// DefaultName is used by the API when no name is given.
	// Default: "World"
	DefaultName string `yaml:"default_name"`

	// WelcomeMessage is shown on the welcome page when no name is given.
	// Default: "Hello World"
	WelcomeMessage string `yaml:"welcome_message"`
}

// HistoryConfig contains greeting history retention configuration.
type HistoryConfig struct {
	// RetentionDays is how long greeting history is kept. 0 keeps it forever.
	// Default: 0
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron schedule for pruning. Empty disables pruning.
	// Example: "0 3 * * *" (daily at 3am)
	PruneSchedule string `yaml:"prune_schedule"`
}

// WebConfig contains HTML page rendering configuration.
type WebConfig struct {
	// TemplatesDir overrides the embedded templates with files on disk.
	// Empty uses the embedded templates.
	TemplatesDir string `yaml:"templates_dir"`

	// WatchTemplates reloads templates from TemplatesDir when they change.
	// Default: false
	WatchTemplates bool `yaml:"watch_templates"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactKeys lists additional attribute keys whose values are masked.
	// "password", "session" and "cookie" are always masked.
	RedactKeys []string `yaml:"redact_keys"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// IsEnabled reports whether metrics are served.
func (c MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "hello"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the export timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// MinimalConfig returns a valid configuration with in-memory storage and
// every default applied. Rate limiting stays enabled.
func MinimalConfig() *Config {
	enabled := true
	cfg := &Config{
		RateLimit: RateLimitConfig{Enabled: &enabled},
		Storage:   StorageConfig{Backend: "memory"},
	}
	ApplyDefaults(cfg)
	return cfg
}

// Bool returns a pointer to b, for optional boolean fields.
func Bool(b bool) *bool {
	return &b
}
