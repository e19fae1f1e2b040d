package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakmontcap/lendboard/internal/presence"
)

func (c *apiClient) Presence(ctx context.Context, window time.Duration) ([]presence.Entry, error) {
	q := url.Values{}
	if window > 0 {
		q.Set("window", window.String())
	}
	var out struct {
		Analysts []presence.Entry `json:"analysts"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/presence", q, nil, &out)
	return out.Analysts, err
}

var whoCmd = &cobra.Command{
	Use:   "who",
	Short: "Show analysts recently active on the board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		window, _ := cmd.Flags().GetDuration("window")
		entries, err := api.Presence(context.Background(), window)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println("nobody active")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ACTOR\tLAST ACTION\tROW\tIDLE\tEVENTS")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				e.Actor, e.LastAction, e.RowKey,
				time.Duration(e.IdleSecs*float64(time.Second)).Round(time.Second),
				e.EventCount,
			)
		}
		return w.Flush()
	},
}

func init() {
	whoCmd.Flags().Duration("window", 0, "only show analysts active within this window")
}
