package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/blaze-intelligence/livedata/internal/fetch"
	"github.com/blaze-intelligence/livedata/internal/livedata"
)

var prefetchCmd = &cobra.Command{
	Use:   "prefetch <domain-id>...",
	Short: "Warm the cache for a list of targets",
	Long: `Fetch each target at low priority so later lookups are served from the
cache. Targets are written as "{domain}-{id}". Each domain is rate limited to
client.prefetch_per_second; targets over the limit are reported as skipped.`,
	Example: `  livedata prefetch team-138 team-112 player-660271 standings-NL`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPrefetch,
}

func init() {
	rootCmd.AddCommand(prefetchCmd)
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	targets, err := parseTargets(args)
	if err != nil {
		return err
	}

	a, err := startApp()
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.client.Client().Prefetch(cmd.Context(), targets)
	if err != nil {
		return err
	}
	if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d targets failed", report.Failed, report.Requested)
	}
	return nil
}

// parseTargets turns "{domain}-{id}" arguments into prefetch targets.
func parseTargets(args []string) ([]livedata.Target, error) {
	targets := make([]livedata.Target, 0, len(args))
	for _, arg := range args {
		key, err := fetch.ParseKey(arg)
		if err != nil {
			return nil, err
		}
		targets = append(targets, livedata.Target{Domain: key.Domain, ID: key.Discriminator})
	}
	return lo.Uniq(targets), nil
}
