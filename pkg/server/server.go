package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"webeng-hq/hello/pkg/config"
	"webeng-hq/hello/pkg/greeting"
	"webeng-hq/hello/pkg/history/retention"
	"webeng-hq/hello/pkg/ratelimit"
	"webeng-hq/hello/pkg/ratelimit/stats"
	tlsreload "webeng-hq/hello/pkg/security/tls"
	"webeng-hq/hello/pkg/session"
	"webeng-hq/hello/pkg/statistics"
	"webeng-hq/hello/pkg/storage"
	"webeng-hq/hello/pkg/telemetry/health"
	"webeng-hq/hello/pkg/telemetry/metrics"
	"webeng-hq/hello/pkg/telemetry/tracing"
	"webeng-hq/hello/pkg/users"
	"webeng-hq/hello/pkg/web/pages"
)

const sessionSweepInterval = time.Minute

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP server of the application together with the
// components it owns.
type Server struct {
	config *config.Config
	info   BuildInfo
	base   *slog.Logger
	logger *slog.Logger

	store      storage.Store
	users      *users.Service
	greetings  *greeting.Service
	statistics *statistics.Service
	sessions   *session.Manager
	pruner     *retention.Pruner
	renderer   *pages.Renderer

	buckets  *ratelimit.Store
	limiter  *ratelimit.Limiter
	recorder stats.Recorder

	collector *metrics.Collector
	tracer    *tracing.Tracer
	health    *health.Checker

	certs     *tlsreload.CertificateReloader
	tlsConfig *tls.Config

	handler    http.Handler
	httpServer *http.Server

	mu           sync.RWMutex
	isRunning    bool
	stopBG       context.CancelFunc
	bgDone       sync.WaitGroup
	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer replaces the tracer built from the tracing configuration.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// New builds every component described by cfg. cfg must have been through
// config.ApplyDefaults. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, info BuildInfo, opts ...Option) (_ *Server, err error) {
	s := &Server{
		config: cfg,
		info:   info,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	base := s.logger
	s.base = base
	s.logger = base.With("component", "server")

	defer func() {
		if err != nil {
			s.closeComponents(context.Background())
		}
	}()

	if s.tracer == nil {
		if s.tracer, err = tracing.New(ctx, cfg.Telemetry.Tracing, info.Version); err != nil {
			return nil, err
		}
	}

	s.collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)

	if s.store, err = storage.Open(ctx, cfg.Storage, base); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Greeting.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("greeting time zone: %w", err)
	}

	s.users = users.NewService(s.store, users.WithLogger(base))
	s.greetings = greeting.NewService(s.store, loc,
		greeting.WithDefaultName(cfg.Greeting.DefaultName),
		greeting.WithLogger(base),
	)
	s.statistics = statistics.NewService(s.store)
	s.sessions = session.NewManager(cfg.Session, session.WithLogger(base))
	s.pruner = retention.NewPruner(s.store, retention.Config{
		RetentionDays: cfg.History.RetentionDays,
		PruneSchedule: cfg.History.PruneSchedule,
	}, base)

	if s.renderer, err = pages.NewRenderer(cfg.Web.TemplatesDir, base); err != nil {
		return nil, err
	}

	rlMetrics := ratelimit.NewMetrics(s.collector.Registry())
	if s.buckets, err = ratelimit.NewStore(bucketConfig(cfg.RateLimit),
		ratelimit.WithMetrics(rlMetrics),
		ratelimit.WithLogger(base),
	); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	s.limiter = ratelimit.NewLimiter(s.buckets,
		ratelimit.WithMetrics(rlMetrics),
		ratelimit.WithLogger(base),
	)
	if s.recorder, err = newRecorder(cfg.RateLimit.Stats, rlMetrics.StatsDropHook(), base); err != nil {
		return nil, err
	}

	if tc := cfg.Server.TLS; tc.Enabled {
		s.certs = tlsreload.NewCertificateReloader(tc.CertFile, tc.KeyFile, tc.ReloadInterval, base)
		if err = s.certs.Load(); err != nil {
			return nil, fmt.Errorf("tls: %w", err)
		}
		if s.tlsConfig, err = tlsreload.NewServerConfig(tc, s.certs); err != nil {
			return nil, fmt.Errorf("tls: %w", err)
		}
	}

	s.health = health.New(cfg.Telemetry.Health.CheckTimeout, base)
	s.health.RegisterCheck("storage", s.store.Ping)
	if p, ok := s.recorder.(pinger); ok {
		s.health.RegisterOptionalCheck("ratelimit_stats", p.Ping)
	}

	s.handler = s.setupRoutes()
	return s, nil
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Health returns the health checker.
func (s *Server) Health() *health.Checker {
	return s.health
}

// Start listens on the configured address and serves until ctx is
// cancelled or a termination signal arrives.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or a termination signal
// arrives, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true

	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
		TLSConfig:      s.tlsConfig,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	s.stopBG = cancel
	s.mu.Unlock()

	if err := s.startBackground(bgCtx); err != nil {
		_ = ln.Close()
		_ = s.Shutdown(context.Background())
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", ln.Addr().String(),
			"version", s.info.Version,
			"ratelimit_enabled", s.config.RateLimit.IsEnabled(),
			"storage", s.config.Storage.Backend,
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
	return s.Shutdown(context.Background())
}

func (s *Server) startBackground(ctx context.Context) error {
	s.buckets.StartJanitor(ctx)

	if err := s.pruner.Start(ctx); err != nil {
		return fmt.Errorf("history retention: %w", err)
	}

	s.bgDone.Add(1)
	go func() {
		defer s.bgDone.Done()
		s.sessions.Run(ctx, sessionSweepInterval)
	}()

	if s.certs != nil {
		s.bgDone.Add(1)
		go func() {
			defer s.bgDone.Done()
			s.certs.Run(ctx)
		}()
	}

	if s.config.Web.WatchTemplates && s.config.Web.TemplatesDir != "" {
		w, err := pages.NewWatcher(s.renderer, pages.DefaultDebounceInterval)
		if err != nil {
			return err
		}
		s.bgDone.Add(1)
		go func() {
			defer s.bgDone.Done()
			if err := w.Watch(ctx); err != nil {
				s.logger.Error("template watcher stopped", "error", err)
			}
			_ = w.Stop()
		}()
	}
	return nil
}

// Shutdown marks the server as draining, stops accepting requests, waits
// for in-flight requests up to the shutdown timeout and releases every
// component. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		s.mu.Unlock()

		s.health.SetDraining(true)
		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if running && s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		if s.stopBG != nil {
			s.stopBG()
		}
		s.pruner.Stop()
		s.bgDone.Wait()

		s.closeComponents(shutdownCtx)

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// closeComponents releases everything New may have opened. Nil components
// are skipped.
func (s *Server) closeComponents(ctx context.Context) {
	if s.buckets != nil {
		_ = s.buckets.Close()
	}
	if p, ok := s.recorder.(pinger); ok {
		if err := p.Close(); err != nil {
			s.logger.Warn("failed to close stats recorder", "error", err)
		}
	}
	if s.tracer != nil {
		if err := s.tracer.Shutdown(ctx); err != nil {
			s.logger.Warn("failed to shut down tracer", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("failed to close storage", "error", err)
		}
	}
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
