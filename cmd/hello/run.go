package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"webeng-hq/hello/pkg/cli"
	"webeng-hq/hello/pkg/config"
	"webeng-hq/hello/pkg/server"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the hello server",
	Long: `Start the hello server with the specified configuration.

The server serves the HTML pages, the JSON API under /api/ and the
operational endpoints until it receives SIGINT or SIGTERM, then drains
in-flight requests and exits.

Examples:
  # Start with built-in defaults
  hello run

  # Start with custom config
  hello run --config /etc/hello/config.yaml

  # Override listen address
  hello run --listen 0.0.0.0:8080

  # Validate config without starting server
  hello run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err)
	}

	logger, err := setupLogging(cfg, os.Stdout)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(cmd, cfg)

	srv, err := server.New(cmd.Context(), cfg, buildInfo(), server.WithLogger(logger.Slog()))
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	addr := cfg.Server.ListenAddress
	fmt.Fprintf(out, "✓ Listening on %s\n", addr)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s%s\n", addr, cfg.Telemetry.Health.LivenessPath)
	if cfg.Telemetry.Metrics.IsEnabled() {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(cmd.Context()); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Hello v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)
	}
	fmt.Fprintf(out, "✓ Configuration loaded (profile %s)\n", cfg.Profile)

	if cfg.RateLimit.IsEnabled() {
		fmt.Fprintf(out, "✓ Rate limit: %d requests per %s on %s\n",
			cfg.RateLimit.Capacity, cfg.RateLimit.RefillPeriod, cfg.RateLimit.ProtectedPathPrefix)
	} else {
		fmt.Fprintln(out, "! Rate limit disabled")
	}
	fmt.Fprintf(out, "✓ Storage: %s\n", cfg.Storage.Backend)
}
