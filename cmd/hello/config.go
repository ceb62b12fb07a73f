package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file named by --config, apply environment
overrides and defaults, and validate the result.

With --verbose the effective configuration is printed as YAML.

Examples:
  hello config validate --config config.yaml
  HELLO_PROFILE=test hello config validate -v`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")
	if !verbose {
		return nil
	}

	if cfg.RateLimit.Stats.Redis.Password != "" {
		cfg.RateLimit.Stats.Redis.Password = "***"
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}
