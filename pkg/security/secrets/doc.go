// Package secrets resolves ${secret:name} references in configuration
// values.
//
// A Resolver asks its providers in order. Two providers exist:
//
//   - FileProvider reads <dir>/<name>, Kubernetes-style mounted secrets.
//     Files must not be readable by group or others.
//   - EnvProvider reads an environment variable derived from the name:
//     "redis-password" with prefix "HELLO_SECRET_" is HELLO_SECRET_REDIS_PASSWORD.
//
// Example:
//
//	r := secrets.NewResolver(fileProvider, secrets.NewEnvProvider("HELLO_SECRET_"))
//	password, err := r.Resolve(ctx, "${secret:redis-password}")
package secrets
