package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/oakmontcap/lendboard/internal/model"
	"github.com/oakmontcap/lendboard/internal/ui"
)

// defaultColumns is the column set for row tables, in display order. The
// first two come from the row itself; the rest resolve through Field.
var defaultColumns = []string{"Property", "Stage", "City", "State", "ConLender", "ConAmount", "PermLender", "PermAmount", "Units"}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printRowListTable(rows []model.JoinedRow, columns []string) {
	if len(columns) == 0 {
		columns = defaultColumns
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for i := range rows {
		vals := make([]string, len(columns))
		for j, col := range columns {
			vals[j] = rowColumn(&rows[i], col)
		}
		fmt.Fprintln(w, strings.Join(vals, "\t"))
	}
	w.Flush()
	fmt.Printf("\n%d rows\n", len(rows))
}

// rowColumn resolves a column for table display. Property and Stage live on
// the row struct; everything else goes through the field precedence.
func rowColumn(r *model.JoinedRow, col string) string {
	switch col {
	case "Property":
		name := r.PropertyName
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		if r.Key.Kind == model.KeySynthetic {
			return ui.RenderMuted(name)
		}
		return name
	case "Stage":
		return ui.RenderStage(string(r.Stage))
	default:
		v, _ := r.Field(col)
		return v
	}
}

func printRowDetail(r *model.JoinedRow, dirty []string) {
	fmt.Printf("Property:  %s\n", ui.RenderAccent(r.PropertyName))
	fmt.Printf("Key:       %s (%s)\n", r.Key.Value, r.Key.Kind)
	if r.Stage != "" {
		fmt.Printf("Stage:     %s\n", ui.RenderStage(string(r.Stage)))
	}

	dirtySet := make(map[string]bool, len(dirty))
	for _, f := range dirty {
		dirtySet[f] = true
	}

	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, name := range names {
			label := name
			if dirtySet[name] {
				label = ui.RenderDirty(name)
			}
			fmt.Fprintf(w, "%s\t%s\n", label, r.Fields[name])
		}
		w.Flush()
	}

	if r.Status != nil && len(r.Status.Fields) > 0 {
		fmt.Println()
		fmt.Println(ui.RenderMuted("feed fields:"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		feedNames := make([]string, 0, len(r.Status.Fields))
		for name := range r.Status.Fields {
			feedNames = append(feedNames, name)
		}
		sort.Strings(feedNames)
		for _, name := range feedNames {
			fmt.Fprintf(w, "%s\t%s\n", ui.RenderMuted(name), r.Status.Fields[name])
		}
		w.Flush()
	}
}
