// Package config provides configuration management for the hello server.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. Configuration is passed
// explicitly to the components that need it; there is no global instance.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// An empty path starts from the defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention HELLO_SECTION_FIELD.
// For example:
//
//   - HELLO_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - HELLO_RATELIMIT_CAPACITY overrides ratelimit.capacity
//   - HELLO_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Profiles
//
// The "test" profile disables the API rate limiter unless ratelimit.enabled
// is set explicitly. The profile is resolved once, when defaults are applied.
//
// # Validation
//
// All configuration is validated automatically during loading and every
// problem is reported at once as a ValidationError:
//
//	cfg, err := config.LoadConfig("config.yaml")
//	var verr config.ValidationError
//	if errors.As(err, &verr) {
//		for _, fe := range verr.Errors {
//			fmt.Println(fe.Field, fe.Message)
//		}
//	}
package config
