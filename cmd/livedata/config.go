package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blaze-intelligence/livedata/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the configuration file without contacting the API.
Checks YAML or TOML syntax, URLs, routes, and cache, breaker and fetch settings.`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration as loaded",
	Long:  `Print the configuration after environment variable expansion.`,
	RunE:  runConfigShow,
}

func init() {
	configShowCmd.Flags().String("format", "", "output format: yaml or toml (default: the file's format)")
	configCmd.AddCommand(configValidateCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	configPath := resolveConfigPath()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err == nil {
		err = cfg.Validate()
	}
	switch {
	case errors.Is(err, config.ErrInvalid):
		fmt.Fprintf(out, "✗ Config validation failed: %s\n", err)
		return err
	case err != nil:
		fmt.Fprintf(out, "✗ Config could not be loaded: %s\n", err)
		return err
	}

	fmt.Fprintf(out, "✓ %s is valid\n", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	configPath := resolveConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format := config.Format(formatFlag)
	if format == "" {
		if format, err = config.FormatForPath(configPath); err != nil {
			return err
		}
	}

	data, err := config.Marshal(cfg, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
