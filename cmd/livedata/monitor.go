package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blaze-intelligence/livedata/internal/health"
	"github.com/blaze-intelligence/livedata/internal/livedata"
	"github.com/blaze-intelligence/livedata/internal/logging"
	reactive "github.com/blaze-intelligence/livedata/internal/ro"
)

const defaultMonitorInterval = 30 * time.Second

var monitorCmd = &cobra.Command{
	Use:   "monitor [domain-id]...",
	Short: "Keep the cache warm and report health until interrupted",
	Long: `Run until SIGINT or SIGTERM. On every tick the given targets are prefetched
and a full health check is logged. The config file is watched; edits are
validated and applied without restarting, keeping the cache and breaker state.`,
	Example: `  livedata monitor --interval 15s team-138 game-42 dashboard-summary`,
	RunE:    runMonitor,
}

func init() {
	monitorCmd.Flags().Duration("interval", defaultMonitorInterval, "time between prefetch and health rounds")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return fmt.Errorf("failed to get interval flag: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("interval must be positive (got %s)", interval)
	}
	targets, err := parseTargets(args)
	if err != nil {
		return err
	}

	a, err := startApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(logging.WithCallID(cmd.Context(), *a.logger, ""))
	defer cancel()

	sub := reactive.OnShutdown(ctx, func(sig os.Signal) {
		log.Info().Str("signal", sig.String()).Msg("shutting down...")
		cancel()
	})
	defer sub.Unsubscribe()

	a.config.StartWatching(ctx)

	log.Info().
		Str("config", a.config.Path()).
		Dur("interval", interval).
		Int("targets", len(targets)).
		Msg("monitor started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		monitorRound(ctx, a, targets)

		select {
		case <-ctx.Done():
			log.Info().Msg("monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func monitorRound(ctx context.Context, a *app, targets []livedata.Target) {
	// Re-read per round so a reload takes effect.
	client := a.client.Client()
	if client == nil {
		return
	}

	if len(targets) > 0 {
		report, err := client.Prefetch(ctx, targets)
		if err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("prefetch round failed")
		}
		log.Info().
			Int("fetched", report.Fetched).
			Int("cached", report.Cached).
			Int("failed", report.Failed).
			Int("skipped", report.Skipped).
			Msg("prefetch round")
	}

	report := client.RunHealthCheck(ctx)
	event := log.Info()
	if report.Overall != health.OverallHealthy {
		event = log.Warn()
	}
	event.
		Str("overall", string(report.Overall)).
		Bool("api", report.API.Healthy).
		Bool("cache", report.Caching.Healthy).
		Strs("open_breakers", report.CircuitBreakers.Open).
		Msg("health check")
}
