package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakmontcap/lendboard/internal/match"
)

// matchCmd runs the name matcher locally, for checking why a status-feed
// property did or didn't pair with a banking row.
var matchCmd = &cobra.Command{
	Use:   "match <name> <candidate> [candidate ...]",
	Short: "Score candidate names against a property name",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		candidates := args[1:]

		best := match.BestMatch(name, candidates)

		if jsonOutput {
			type result struct {
				Candidate string `json:"candidate"`
				Score     int    `json:"score"`
				Match     bool   `json:"match"`
				Best      bool   `json:"best"`
			}
			results := make([]result, len(candidates))
			for i, c := range candidates {
				results[i] = result{
					Candidate: c,
					Score:     match.Score(name, c),
					Match:     match.Match(name, c),
					Best:      i == best,
				}
			}
			return printJSON(results)
		}

		fmt.Printf("name: %s (normalized %q)\n\n", name, match.Normalize(name))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  CANDIDATE\tSCORE\tMATCH\tNORMALIZED")
		for i, c := range candidates {
			marker := "  "
			if i == best {
				marker = "* "
			}
			fmt.Fprintf(w, "%s%s\t%d\t%v\t%s\n", marker, c, match.Score(name, c), match.Match(name, c), match.Normalize(c))
		}
		return w.Flush()
	},
}
