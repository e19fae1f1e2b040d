package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakmontcap/lendboard/internal/model"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "List board rows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		columns, _ := cmd.Flags().GetStringSlice("columns")

		rows, err := api.ListRows(context.Background(), f)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rows)
		}
		printRowListTable(rows, columns)
		return nil
	},
}

// filterFromFlags builds a RowFilter from the shared query flags.
func filterFromFlags(cmd *cobra.Command) (model.RowFilter, error) {
	pivot, _ := cmd.Flags().GetString("pivot")
	search, _ := cmd.Flags().GetString("search")
	stages, _ := cmd.Flags().GetStringSlice("stages")
	sortField, _ := cmd.Flags().GetString("sort")
	dir, _ := cmd.Flags().GetString("dir")

	f := model.RowFilter{
		Search: search,
		Sort:   sortField,
	}
	if pivot != "" {
		f.Pivot = model.Pivot(pivot)
		if !f.Pivot.IsValid() {
			return f, fmt.Errorf("unknown pivot %q (property, bank, equity)", pivot)
		}
	}
	switch dir {
	case "", "asc":
		f.Dir = model.SortAsc
	case "desc":
		f.Dir = model.SortDesc
	default:
		return f, fmt.Errorf("unknown sort direction %q", dir)
	}
	for _, s := range stages {
		stage := model.Stage(strings.TrimSpace(s))
		if !stage.IsValid() {
			return f, fmt.Errorf("unknown stage %q", s)
		}
		f.Stages = append(f.Stages, stage)
	}
	return f, nil
}

// addFilterFlags registers the shared query flags on a command.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("pivot", "", "board pivot: property, bank, or equity")
	cmd.Flags().String("search", "", "case-insensitive text search")
	cmd.Flags().StringSlice("stages", nil, "filter by lifecycle stage (repeatable)")
	cmd.Flags().String("sort", "", "sort by logical field name")
	cmd.Flags().String("dir", "asc", "sort direction: asc or desc")
}

func init() {
	addFilterFlags(rowsCmd)
	rowsCmd.Flags().StringSlice("columns", nil, "columns to display")
}
