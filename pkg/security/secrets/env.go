package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables.
type EnvProvider struct {
	Prefix string
}

// NewEnvProvider creates an environment variable provider. The prefix is
// prepended to every variable name.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// GetSecret reads the variable for name. An unset or empty variable is
// ErrNotFound.
func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	envVar := p.EnvVar(name)
	value, ok := os.LookupEnv(envVar)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s (env var %s)", ErrNotFound, name, envVar)
	}
	return value, nil
}

// Name returns "env".
func (p *EnvProvider) Name() string {
	return "env"
}

// EnvVar returns the variable name for a secret: "redis-password" becomes
// PREFIX + "REDIS_PASSWORD".
func (p *EnvProvider) EnvVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
