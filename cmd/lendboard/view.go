package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Manage saved views (named filter presets)",
}

var viewSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the given filter flags as a named view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		pref, err := api.SetPreference(context.Background(), args[0], f)
		if err != nil {
			return err
		}
		fmt.Printf("view %q saved\n", pref.View)
		return nil
	},
}

var viewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := api.ListPreferences(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(prefs)
		}
		if len(prefs) == 0 {
			fmt.Println("no saved views")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPIVOT\tSEARCH\tSTAGES\tSORT")
		for _, p := range prefs {
			stages := make([]string, len(p.Filter.Stages))
			for i, s := range p.Filter.Stages {
				stages[i] = string(s)
			}
			sortCol := p.Filter.Sort
			if sortCol != "" && p.Filter.Dir != "" {
				sortCol += " " + string(p.Filter.Dir)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.View, p.Filter.Pivot, p.Filter.Search, strings.Join(stages, ","), sortCol)
		}
		return w.Flush()
	},
}

var viewRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "List rows using a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pref, err := api.GetPreference(context.Background(), args[0])
		if err != nil {
			return err
		}
		rows, err := api.ListRows(context.Background(), pref.Filter)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rows)
		}
		printRowListTable(rows, nil)
		return nil
	},
}

var viewDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.DeletePreference(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("view %q deleted\n", args[0])
		return nil
	},
}

func init() {
	addFilterFlags(viewSaveCmd)
	viewCmd.AddCommand(viewSaveCmd)
	viewCmd.AddCommand(viewListCmd)
	viewCmd.AddCommand(viewRunCmd)
	viewCmd.AddCommand(viewDeleteCmd)
}
