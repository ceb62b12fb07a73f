// Package server wires the application together and runs the HTTP server.
//
// New builds every component from a config.Config: storage, the services,
// the rate limiter with its bucket store and statistics recorder, the
// telemetry stack and the handler chain. Serve runs the background loops
// (bucket janitor, session sweep, history retention, template watcher)
// for as long as the HTTP server runs and stops them on shutdown.
package server
