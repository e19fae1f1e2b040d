package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save <key> <Field=value> [Field=value ...]",
	Short: "Save field edits on a row back to the backend",
	Long: `Save writes one or more field changes through to the backend system.
Project fields (ProjectName, City, State, Region, ProductType, Units,
DealSequence, Stage) and loan fields with a Con or Perm prefix (ConAmount,
PermRate, ConLenderID, ConClosingDate, ...) are accepted. All changes are
validated before anything is sent.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		changes := make(map[string]string, len(args)-1)
		for _, arg := range args[1:] {
			field, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("invalid change %q, want Field=value", arg)
			}
			changes[field] = value
		}

		row, err := api.SaveRow(context.Background(), key, changes, actor)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]any{"row": row})
		}
		fmt.Printf("saved %d field(s) on %q\n", len(changes), row.PropertyName)
		return nil
	},
}
