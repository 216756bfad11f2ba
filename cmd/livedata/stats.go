package main

import (
	"github.com/spf13/cobra"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/livedata"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print request, cache and circuit breaker statistics",
	Long: `Optionally warm the cache with the given targets, then print the client's
performance statistics and cache statistics.`,
	Example: `  livedata stats team-138 game-42`,
	RunE:    runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

type statsOutput struct {
	Performance livedata.PerformanceStats `json:"performance"`
	Cache       cache.Stats               `json:"cache"`
}

func runStats(cmd *cobra.Command, args []string) error {
	targets, err := parseTargets(args)
	if err != nil {
		return err
	}

	a, err := startApp()
	if err != nil {
		return err
	}
	defer a.close()

	client := a.client.Client()
	if len(targets) > 0 {
		if _, err := client.Prefetch(cmd.Context(), targets); err != nil {
			return err
		}
	}

	return writeJSON(cmd.OutOrStdout(), statsOutput{
		Performance: client.GetPerformanceStats(),
		Cache:       client.GetCacheStats(),
	})
}
