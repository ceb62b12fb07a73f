// Package types defines the JSON bodies shared by the HTTP handlers and
// middleware: the error envelope, the rate limit rejection and the helpers
// that write them.
package types
