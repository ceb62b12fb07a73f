package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"webeng-hq/hello/pkg/cli"
	"webeng-hq/hello/pkg/config"
	"webeng-hq/hello/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hello",
	Short: "Hello - greeting web application",
	Long: `Hello serves personalised greetings over HTML pages and a JSON API.

It provides:
  - Accounts with USER and ADMIN roles and cookie sessions
  - A greeting history with retention
  - Per-client token bucket rate limiting of the /api/ endpoints
  - Prometheus metrics, health probes and OpenTelemetry tracing

Without --config the built-in defaults are used. Every setting can be
overridden with HELLO_SECTION_FIELD environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the file named by --config, applies environment
// overrides and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err)
	}
	return cfg, nil
}

// setupLogging installs the configured logger as the slog default.
// --verbose forces the debug level.
func setupLogging(cfg *config.Config, w io.Writer) (*logging.Logger, error) {
	lc := cfg.Telemetry.Logging
	if verbose {
		lc.Level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:      lc.Level,
		Format:     lc.Format,
		AddSource:  lc.AddSource,
		RedactKeys: lc.RedactKeys,
		Writer:     w,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err)
	}
	logger.SetDefault()
	return logger, nil
}
