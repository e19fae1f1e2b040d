package events

import (
	"context"

	"github.com/oakmontcap/lendboard/internal/model"
)

// Event topic constants
const (
	TopicRowsRefreshed = "lendboard.rows.refreshed"
	TopicRowSaved      = "lendboard.row.saved"
	TopicRowSaveFailed = "lendboard.row.save_failed"
	TopicSnapshotSaved = "lendboard.snapshot.saved"
)

// Event types

type RowsRefreshed struct {
	RowCount     int `json:"row_count"`
	MatchedPairs int `json:"matched_pairs"`
	StatusOnly   int `json:"status_only"`
	BankingOnly  int `json:"banking_only"`
}

type RowSaved struct {
	Key     model.RowKey   `json:"key"`
	Actor   string         `json:"actor,omitempty"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type RowSaveFailed struct {
	Key    model.RowKey `json:"key"`
	Actor  string       `json:"actor,omitempty"`
	Reason string       `json:"reason"`
}

type SnapshotSaved struct {
	SnapshotID int64 `json:"snapshot_id"`
	RowCount   int   `json:"row_count"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
