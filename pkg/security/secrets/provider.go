package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a provider that does not hold the secret.
// The resolver then tries the next provider.
var ErrNotFound = errors.New("secret not found")

// Provider retrieves secrets by name.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)

	// Name identifies the provider in errors and logs.
	Name() string
}
