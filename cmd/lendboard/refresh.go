package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Trigger a full board refresh from the backend and feeds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := api.Refresh(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(stats)
		}
		fmt.Printf("refreshed %d rows (%d matched, %d status-only, %d banking-only)\n",
			stats.RowCount, stats.MatchedPairs, stats.StatusOnly, stats.BankingOnly)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the board server",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := api.Health(context.Background())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}
		if jsonOutput {
			return printJSON(out)
		}
		fmt.Printf("Health: %v\n", out["status"])
		if t, ok := out["refreshed_at"]; ok {
			fmt.Printf("Refreshed: %v\n", t)
		}
		if out["status"] != "ok" {
			return fmt.Errorf("unhealthy: %v", out["status"])
		}
		return nil
	},
}
