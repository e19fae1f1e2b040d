package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakmontcap/lendboard/internal/model"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect stored board snapshots",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots (newest first)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		snaps, err := api.ListSnapshots(context.Background(), limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(snaps)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTAKEN AT\tROWS")
		for _, s := range snaps {
			fmt.Fprintf(w, "%d\t%s\t%d\n", s.ID, s.TakenAt.Format("2006-01-02 15:04:05"), s.RowCount)
		}
		return w.Flush()
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id|latest>",
	Short: "Show a snapshot's rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			snap model.Snapshot
			err  error
		)
		if args[0] == "latest" {
			snap, err = api.LatestSnapshot(context.Background())
		} else {
			var id int64
			id, err = strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q", args[0])
			}
			snap, err = api.GetSnapshot(context.Background(), id)
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(snap)
		}
		fmt.Printf("snapshot %d taken %s (%d rows)\n\n",
			snap.ID, snap.TakenAt.Format("2006-01-02 15:04:05"), snap.RowCount)
		printRowListTable(snap.Rows, nil)
		return nil
	},
}

func init() {
	snapshotListCmd.Flags().Int("limit", 0, "maximum snapshots to list")
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
}
