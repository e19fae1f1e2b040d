package model

import (
	"encoding/json"
	"time"
)

// Snapshot is a persisted capture of the reconciled board at a point in time.
// Rows is omitted from listing queries and only loaded when a single snapshot
// is fetched.
type Snapshot struct {
	ID       int64       `json:"id"`
	TakenAt  time.Time   `json:"taken_at"`
	RowCount int         `json:"row_count"`
	Rows     []JoinedRow `json:"rows,omitempty"`
}

// Preference stores a named view's saved filter, sort, and pivot settings.
type Preference struct {
	View      string    `json:"view"`
	Filter    RowFilter `json:"filter"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RowEvent is an audit record of a change applied to a board row.
type RowEvent struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	Key       RowKey          `json:"key"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
