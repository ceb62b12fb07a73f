// Package logging provides structured logging with redaction of sensitive
// fields.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Masking of passwords, session IDs and cookies
//   - Context-aware logging with request IDs, users and client addresses
//   - A level that can be changed at runtime
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "user created",
//	    "username", "alice",
//	    "password", pw, // logged as ***
//	)
//
// Records logged through slog.Default after SetDefault get the same
// treatment as records logged through the Logger methods.
package logging
