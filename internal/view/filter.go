package view

import (
	"strings"

	"github.com/oakmontcap/lendboard/internal/model"
)

// Filter returns the rows passing the free-text query and the stage
// multi-select. The stage check always reads the project-derived stage, never
// a stage column the feed happens to carry.
func Filter(rows []model.JoinedRow, f model.RowFilter) []model.JoinedRow {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	stages := make(map[model.Stage]bool, len(f.Stages))
	for _, s := range f.Stages {
		stages[s] = true
	}

	out := make([]model.JoinedRow, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if len(stages) > 0 && !stages[r.Stage] {
			continue
		}
		if query != "" && !strings.Contains(searchText(r), query) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// searchText concatenates the row's searchable fields, lowercased.
func searchText(r *model.JoinedRow) string {
	var sb strings.Builder
	sb.WriteString(r.PropertyName)
	sb.WriteByte(' ')
	for _, v := range r.Fields {
		sb.WriteString(v)
		sb.WriteByte(' ')
	}
	if r.Status != nil {
		for _, v := range r.Status.Fields {
			sb.WriteString(v)
			sb.WriteByte(' ')
		}
	}
	return strings.ToLower(sb.String())
}

// Apply runs the full pipeline for a query: pivot projection, filter, sort.
func Apply(rows []model.JoinedRow, f model.RowFilter) []model.JoinedRow {
	switch f.Pivot {
	case model.PivotBank:
		rows = ByBank(rows)
	case model.PivotEquity:
		rows = ByEquity(rows)
	default:
		rows = append([]model.JoinedRow(nil), rows...)
	}
	rows = Filter(rows, f)
	Sort(rows, f.Sort, f.Dir)
	return rows
}
