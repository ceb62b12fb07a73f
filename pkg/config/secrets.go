package config

import (
	"context"
	"fmt"

	"webeng-hq/hello/pkg/security/secrets"
)

// SecretEnvPrefix prefixes the environment variables holding secrets.
const SecretEnvPrefix = EnvPrefix + "SECRET_"

// resolveSecrets replaces ${secret:name} references in the fields that may
// carry credentials. Secrets are read from SecretsDir first, then from
// HELLO_SECRET_<NAME>.
func resolveSecrets(ctx context.Context, cfg *Config) error {
	fields := map[string]*string{
		"ratelimit.stats.redis.address":  &cfg.RateLimit.Stats.Redis.Address,
		"ratelimit.stats.redis.password": &cfg.RateLimit.Stats.Redis.Password,
		"telemetry.tracing.endpoint":     &cfg.Telemetry.Tracing.Endpoint,
	}

	var resolver *secrets.Resolver
	for field, dst := range fields {
		if !secrets.HasReference(*dst) {
			continue
		}
		if resolver == nil {
			var err error
			if resolver, err = newSecretResolver(cfg.SecretsDir); err != nil {
				return err
			}
		}
		value, err := resolver.Resolve(ctx, *dst)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*dst = value
	}
	return nil
}

func newSecretResolver(dir string) (*secrets.Resolver, error) {
	env := secrets.NewEnvProvider(SecretEnvPrefix)
	if dir == "" {
		return secrets.NewResolver(env), nil
	}
	files, err := secrets.NewFileProvider(dir)
	if err != nil {
		return nil, err
	}
	return secrets.NewResolver(files, env), nil
}
