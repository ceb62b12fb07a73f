// Package health provides the liveness and readiness probes of the hello
// server.
//
// Liveness answers 200 while the process serves HTTP. Readiness runs the
// registered component checks concurrently, each bounded by
// telemetry.health.check_timeout:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout, logger)
//	checker.RegisterCheck("storage", store.Ping)
//	checker.RegisterOptionalCheck("ratelimit_stats", recorder.Ping)
//	checker.Register(mux, "/health", "/ready")
//
// A failing critical check answers 503 with status "unhealthy"; a failing
// optional check answers 200 with status "degraded". During graceful
// shutdown SetDraining(true) makes readiness answer 503 "draining".
package health
