// Package main is the entry point for livedata.
package main

import (
	"context"
	"os"

	"charm.land/fang/v2"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "config.yaml"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "livedata",
	Short: "Resilient client for the Blaze Intelligence live data API",
	Long: `livedata fetches team, player, game, standings and dashboard data from the
Blaze Intelligence API through a tiered cache, with per-domain circuit breakers,
request deduplication and stale fallback when the API is unavailable.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file path (default: ./"+defaultConfigFile+" or ~/.config/livedata/"+defaultConfigFile+")")
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}
