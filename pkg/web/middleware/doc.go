// Package middleware provides the HTTP middleware chain of the server.
//
// The server composes it outermost first:
//
//	Recovery → Logging → RequestID → Tracing → RateLimit → mux
//
// RateLimit is the admission gate: requests under the protected path
// prefix consume one token from the bucket of their client address and are
// rejected with 429 once the bucket is empty. Everything else passes
// through untouched.
package middleware
