// Package feed pulls the external datasets (project status and construction
// schedule) from the analytics host. The feeds are best-effort: an absent or
// unreachable host degrades to an empty dataset with a warning, never an
// error surfaced to the caller.
package feed

import (
	"context"
	"log/slog"

	"github.com/oakmontcap/lendboard/internal/model"
)

// Source fetches the rows of a named dataset alias.
type Source interface {
	Fetch(ctx context.Context, alias string) ([]map[string]string, error)
}

// StatusRows fetches and shapes the status dataset. Fetch failures are
// logged and return an empty slice.
func StatusRows(ctx context.Context, src Source, alias string) []model.StatusRow {
	raw := fetchRows(ctx, src, alias)
	out := make([]model.StatusRow, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.StatusRow{
			Property: r["Property"],
			Fields:   dropKey(r, "Property"),
		})
	}
	return out
}

// ScheduleRows fetches and shapes the construction-schedule dataset.
func ScheduleRows(ctx context.Context, src Source, alias string) []model.ScheduleRow {
	raw := fetchRows(ctx, src, alias)
	out := make([]model.ScheduleRow, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.ScheduleRow{
			Property: r["Property"],
			Fields:   dropKey(r, "Property"),
		})
	}
	return out
}

func fetchRows(ctx context.Context, src Source, alias string) []map[string]string {
	if src == nil {
		slog.Warn("feed source not configured, using empty dataset", "alias", alias)
		return nil
	}
	rows, err := src.Fetch(ctx, alias)
	if err != nil {
		slog.Warn("feed fetch failed, using empty dataset", "alias", alias, "error", err)
		return nil
	}
	return rows
}

func dropKey(m map[string]string, key string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}
