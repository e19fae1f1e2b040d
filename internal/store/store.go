package store

import (
	"context"

	"github.com/oakmontcap/lendboard/internal/model"
)

// Store defines the persistence interface for the board.
type Store interface {
	// Snapshots
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error // assigns snap.ID
	GetSnapshot(ctx context.Context, id int64) (*model.Snapshot, error)
	LatestSnapshot(ctx context.Context) (*model.Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]*model.Snapshot, error) // metadata only, Rows omitted
	PruneSnapshots(ctx context.Context, keep int) (int, error)               // returns number deleted

	// View preferences
	SetPreference(ctx context.Context, pref *model.Preference) error
	GetPreference(ctx context.Context, view string) (*model.Preference, error)
	ListPreferences(ctx context.Context) ([]*model.Preference, error)
	DeletePreference(ctx context.Context, view string) error

	// Row audit events
	RecordRowEvent(ctx context.Context, event *model.RowEvent) error
	GetRowEvents(ctx context.Context, key model.RowKey) ([]*model.RowEvent, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
