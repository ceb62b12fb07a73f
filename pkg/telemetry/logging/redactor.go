package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redacted is the replacement for masked values.
const Redacted = "***"

// defaultSensitiveKeys are always masked. Matching is a case-insensitive
// substring match on the attribute key.
var defaultSensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token",
	"session", "cookie",
	"authorization",
}

// bcryptHash matches password hashes that end up in a string value.
var bcryptHash = regexp.MustCompile(`\$2[abxy]?\$\d{2}\$[./A-Za-z0-9]{53}`)

// Redactor masks sensitive values in log attributes.
type Redactor struct {
	keys []string
}

// NewRedactor creates a Redactor masking the default keys plus extraKeys.
func NewRedactor(extraKeys []string) *Redactor {
	keys := make([]string, 0, len(defaultSensitiveKeys)+len(extraKeys))
	keys = append(keys, defaultSensitiveKeys...)
	for _, k := range extraKeys {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keys = append(keys, k)
		}
	}
	return &Redactor{keys: keys}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}

	if r.IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}

	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); bcryptHash.MatchString(s) {
			return slog.String(a.Key, r.RedactString(s))
		}
	}
	return a
}

// RedactString masks password hashes inside value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	return bcryptHash.ReplaceAllString(value, "$$2"+Redacted)
}

// IsSensitiveKey reports whether values under key are masked.
func (r *Redactor) IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range r.keys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}
