package secrets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var secretRef = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Resolver looks secrets up in a list of providers.
type Resolver struct {
	providers []Provider
}

// NewResolver creates a resolver asking providers in order. Nil providers
// are skipped.
func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{}
	for _, p := range providers {
		if p != nil {
			r.providers = append(r.providers, p)
		}
	}
	return r
}

// GetSecret returns the value from the first provider holding name. Errors
// other than ErrNotFound stop the lookup.
func (r *Resolver) GetSecret(ctx context.Context, name string) (string, error) {
	for _, p := range r.providers {
		value, err := p.GetSecret(ctx, name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%s provider: %w", p.Name(), err)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Resolve replaces every ${secret:name} in input. Strings without
// references are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${secret:") {
		return input, nil
	}

	var errs []error
	out := secretRef.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSpace(secretRef.FindStringSubmatch(match)[1])
		value, err := r.GetSecret(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return match
		}
		return value
	})
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return out, nil
}

// HasReference reports whether s contains a ${secret:...} reference.
func HasReference(s string) bool {
	return secretRef.MatchString(s)
}
