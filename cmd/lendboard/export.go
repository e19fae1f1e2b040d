package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakmontcap/lendboard/internal/model"
	boardsync "github.com/oakmontcap/lendboard/internal/sync"
)

// remoteRows adapts the API client to the export row source.
type remoteRows struct {
	rows        []model.JoinedRow
	refreshedAt time.Time
}

func (r *remoteRows) Rows(_ model.RowFilter) []model.JoinedRow { return r.rows }
func (r *remoteRows) RefreshedAt() time.Time                   { return r.refreshedAt }

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full board as JSONL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		ctx := context.Background()

		rows, err := api.ListRows(ctx, model.RowFilter{})
		if err != nil {
			return err
		}
		src := &remoteRows{rows: rows}
		if h, err := api.Health(ctx); err == nil {
			if raw, ok := h["refreshed_at"].(string); ok {
				if t, err := time.Parse(time.RFC3339, raw); err == nil {
					src.refreshedAt = t
				}
			}
		}

		out := os.Stdout
		if outPath != "" && outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if err := boardsync.ExportJSONL(ctx, src, out); err != nil {
			return err
		}
		if outPath != "" && outPath != "-" {
			fmt.Fprintf(os.Stderr, "wrote %d rows to %s\n", len(rows), outPath)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "write to a file instead of stdout")
}
