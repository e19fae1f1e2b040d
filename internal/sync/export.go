package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/oakmontcap/lendboard/internal/model"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	RefreshedAt time.Time `json:"refreshed_at,omitempty"`
	RowCount    int       `json:"row_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes the full joined row set as JSONL to w, sorted by row key
// so successive exports of the same data are byte-identical after the header.
func ExportJSONL(ctx context.Context, src RowSource, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := src.Rows(model.RowFilter{})
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Key.Value < rows[j].Key.Value
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		RefreshedAt: src.RefreshedAt(),
		RowCount:    len(rows),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for i := range rows {
		if err := enc.Encode(record{Type: "row", Data: &rows[i]}); err != nil {
			return fmt.Errorf("encode row %s: %w", rows[i].Key.Value, err)
		}
	}

	return nil
}
