package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blaze-intelligence/livedata/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the live data API and local client health",
	Long: `Query the API health endpoint. With --full, also exercise the cache and
report circuit breaker state, combining the checks into an overall status.`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().Bool("full", false, "run the cache, API and circuit breaker checks")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}

	a, err := startApp()
	if err != nil {
		return err
	}
	defer a.close()

	client := a.client.Client()
	if !full {
		status := client.GetHealthStatus(cmd.Context())
		if err := writeJSON(cmd.OutOrStdout(), status); err != nil {
			return err
		}
		if !status.Healthy {
			return fmt.Errorf("%w: %s", health.ErrProbeFailed, status.Error)
		}
		return nil
	}

	report := client.RunHealthCheck(cmd.Context())
	if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.Overall == health.OverallUnhealthy {
		return errors.New("live data client is unhealthy")
	}
	return nil
}
