package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blaze-intelligence/livedata/internal/cache"
	"github.com/blaze-intelligence/livedata/internal/fetch"
	"github.com/blaze-intelligence/livedata/internal/livedata"
	"github.com/blaze-intelligence/livedata/internal/logging"
)

var getCmd = &cobra.Command{
	Use:   "get <domain> [id]",
	Short: "Fetch one payload through the cache",
	Long: `Fetch a team, player, game, standings or dashboard payload and print it
with its provenance fields (fromCache, fresh, stale, cacheSource).
The dashboard domain defaults to the "summary" id.`,
	Example: `  livedata get team 138
  livedata get standings NL-Central
  livedata get dashboard`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().String("priority", "normal", "cache placement priority (high, normal, low)")
	getCmd.Flags().Bool("raw", false, "print the payload without provenance fields")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	domain := args[0]
	id := livedata.DashboardSummaryID
	if len(args) == 2 {
		id = args[1]
	} else if domain != livedata.DomainDashboard {
		return fmt.Errorf("an id is required for domain %q", domain)
	}

	priorityFlag, err := cmd.Flags().GetString("priority")
	if err != nil {
		return fmt.Errorf("failed to get priority flag: %w", err)
	}
	priority, err := parsePriority(priorityFlag)
	if err != nil {
		return err
	}
	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return fmt.Errorf("failed to get raw flag: %w", err)
	}

	a, err := startApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := logging.WithCallID(cmd.Context(), *a.logger, "")
	res, err := a.client.Client().Get(ctx, domain, id, fetch.WithPriority(priority))
	if err != nil {
		return fmt.Errorf("get %s %s (call %s): %w", domain, id, logging.CallID(ctx), err)
	}

	out := []byte(res.Data)
	if !raw {
		if out, err = res.JSON(); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func parsePriority(s string) (cache.Priority, error) {
	switch strings.ToLower(s) {
	case "high":
		return cache.PriorityHigh, nil
	case "", "normal":
		return cache.PriorityNormal, nil
	case "low":
		return cache.PriorityLow, nil
	default:
		return 0, fmt.Errorf("unknown priority %q (use high, normal or low)", s)
	}
}
