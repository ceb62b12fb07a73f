package config

import "time"

// Default values for configuration fields.
const (
	DefaultProfile = ProfileDefault

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// TLS defaults
	DefaultTLSMinVersion     = "1.2"
	DefaultTLSReloadInterval = 5 * time.Minute

	// Rate limit defaults
	DefaultRateLimitCapacity            int64 = 5
	DefaultRateLimitRefillPeriod              = 60 * time.Second
	DefaultRateLimitRefillAmount        int64 = 5
	DefaultRateLimitIdleEvictionTimeout       = 600 * time.Second
	DefaultRateLimitCleanupInterval           = 60 * time.Second
	DefaultRateLimitProtectedPathPrefix       = "/api/"
	DefaultRateLimitStatsBackend              = "memory"
	DefaultRedisAddress                       = "localhost:6379"
	DefaultRedisPrefix                        = "hello:ratelimit:stats"
	DefaultRedisTTL                           = 24 * time.Hour

	// Storage defaults
	DefaultStorageBackend     = "sqlite"
	DefaultSQLitePath         = "data/hello.db"
	DefaultSQLiteDriver       = "sqlite"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteMaxIdleConns = 5
	DefaultSQLiteJournalMode  = "WAL"
	DefaultSQLiteBusyTimeout  = 5 * time.Second

	// Session defaults
	DefaultSessionCookieName = "hello_session"
	DefaultSessionTTL        = 30 * time.Minute

	// Greeting defaults
	DefaultGreetingTimeZone       = "Europe/Madrid"
	DefaultGreetingName           = "World"
	DefaultGreetingWelcomeMessage = "Hello World"

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsPath         = "/metrics"
	DefaultTracingServiceName  = "hello"
	DefaultTracingSampleRatio  = 1.0
	DefaultTracingTimeout      = 10 * time.Second
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
	DefaultHealthCheckTimeout  = 5 * time.Second
)

// DefaultRequestDurationBuckets are the histogram buckets for HTTP request
// duration in seconds.
var DefaultRequestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// ApplyDefaults fills every unset field of cfg with its default value.
// The profile is resolved here: under the "test" profile an unset
// ratelimit.enabled becomes false.
func ApplyDefaults(cfg *Config) {
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReloadInterval
	}

	applyRateLimitDefaults(cfg)

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.Driver == "" {
		cfg.Storage.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Storage.SQLite.MaxOpenConns == 0 {
		cfg.Storage.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Storage.SQLite.MaxIdleConns == 0 {
		cfg.Storage.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Storage.SQLite.JournalMode == "" {
		cfg.Storage.SQLite.JournalMode = DefaultSQLiteJournalMode
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Session defaults
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultSessionCookieName
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = DefaultSessionTTL
	}

	// Greeting defaults
	if cfg.Greeting.TimeZone == "" {
		cfg.Greeting.TimeZone = DefaultGreetingTimeZone
	}
	if cfg.Greeting.DefaultName == "" {
		cfg.Greeting.DefaultName = DefaultGreetingName
	}
	if cfg.Greeting.WelcomeMessage == "" {
		cfg.Greeting.WelcomeMessage = DefaultGreetingWelcomeMessage
	}

	applyTelemetryDefaults(cfg)
}

func applyRateLimitDefaults(cfg *Config) {
	rl := &cfg.RateLimit

	if rl.Enabled == nil {
		rl.Enabled = Bool(cfg.Profile != ProfileTest)
	}
	if rl.Capacity == 0 {
		rl.Capacity = DefaultRateLimitCapacity
	}
	if rl.RefillPeriod == 0 {
		rl.RefillPeriod = DefaultRateLimitRefillPeriod
	}
	if rl.RefillAmount == 0 {
		rl.RefillAmount = DefaultRateLimitRefillAmount
	}
	if rl.IdleEvictionTimeout == 0 {
		rl.IdleEvictionTimeout = DefaultRateLimitIdleEvictionTimeout
	}
	if rl.CleanupInterval == 0 {
		rl.CleanupInterval = DefaultRateLimitCleanupInterval
	}
	if rl.ProtectedPathPrefix == "" {
		rl.ProtectedPathPrefix = DefaultRateLimitProtectedPathPrefix
	}

	if rl.Stats.Backend == "" {
		rl.Stats.Backend = DefaultRateLimitStatsBackend
	}
	if rl.Stats.Redis.Address == "" {
		rl.Stats.Redis.Address = DefaultRedisAddress
	}
	if rl.Stats.Redis.Prefix == "" {
		rl.Stats.Redis.Prefix = DefaultRedisPrefix
	}
	if rl.Stats.Redis.TTL == 0 {
		rl.Stats.Redis.TTL = DefaultRedisTTL
	}
}

func applyTelemetryDefaults(cfg *Config) {
	t := &cfg.Telemetry

	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Enabled == nil {
		t.Metrics.Enabled = Bool(true)
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if len(t.Metrics.RequestDurationBuckets) == 0 {
		t.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.Timeout == 0 {
		t.Tracing.Timeout = DefaultTracingTimeout
	}

	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
