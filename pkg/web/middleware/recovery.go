package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"webeng-hq/hello/pkg/web/types"
)

// Recovery recovers from panics in HTTP handlers and returns a 500 JSON
// error. The panic is logged with its stack trace; clients never see
// internal details.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"component", "web.middleware",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			_ = types.WriteError(w, types.NewServerError(
				"An internal error occurred. Please try again later.",
			))
		}()

		next.ServeHTTP(w, r)
	})
}
