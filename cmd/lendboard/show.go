package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a single row with its merged fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, dirty, err := api.GetRow(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]any{"row": row, "dirty_fields": dirty})
		}
		printRowDetail(&row, dirty)
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events <key>",
	Short: "Show the audit trail for a row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		evts, err := api.RowEvents(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(evts)
		}
		if len(evts) == 0 {
			fmt.Println("no events")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTOPIC\tACTOR\tPAYLOAD")
		for _, e := range evts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Topic,
				e.Actor,
				string(e.Payload),
			)
		}
		return w.Flush()
	},
}
