package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oakmontcap/lendboard/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func querySaveSnapshot(ctx context.Context, db executor, snap *model.Snapshot) error {
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	snap.RowCount = len(snap.Rows)

	rows, err := json.Marshal(snap.Rows)
	if err != nil {
		return fmt.Errorf("marshal snapshot rows: %w", err)
	}

	return db.QueryRowContext(ctx, `
		INSERT INTO snapshots (taken_at, row_count, rows)
		VALUES ($1, $2, $3)
		RETURNING id`,
		snap.TakenAt, snap.RowCount, rows,
	).Scan(&snap.ID)
}

func queryGetSnapshot(ctx context.Context, db executor, id int64) (*model.Snapshot, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, taken_at, row_count, rows FROM snapshots WHERE id = $1`, id)
	return scanSnapshot(row, true)
}

func queryLatestSnapshot(ctx context.Context, db executor) (*model.Snapshot, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, taken_at, row_count, rows FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT 1`)
	return scanSnapshot(row, true)
}

func queryListSnapshots(ctx context.Context, db executor, limit int) ([]*model.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, taken_at, row_count FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshotMetas(rows)
}

func queryPruneSnapshots(ctx context.Context, db executor, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT $1
		)`, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func querySetPreference(ctx context.Context, db executor, pref *model.Preference) error {
	filter, err := json.Marshal(pref.Filter)
	if err != nil {
		return fmt.Errorf("marshal preference filter: %w", err)
	}

	now := time.Now().UTC()
	return db.QueryRowContext(ctx, `
		INSERT INTO preferences (view, filter, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (view) DO UPDATE SET filter = $2, updated_at = $3
		RETURNING created_at, updated_at`,
		pref.View, filter, now,
	).Scan(&pref.CreatedAt, &pref.UpdatedAt)
}

func queryGetPreference(ctx context.Context, db executor, view string) (*model.Preference, error) {
	row := db.QueryRowContext(ctx,
		`SELECT view, filter, created_at, updated_at FROM preferences WHERE view = $1`, view)
	return scanPreference(row)
}

func queryListPreferences(ctx context.Context, db executor) ([]*model.Preference, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT view, filter, created_at, updated_at FROM preferences ORDER BY view`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPreferences(rows)
}

func queryDeletePreference(ctx context.Context, db executor, view string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM preferences WHERE view = $1`, view)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryRecordRowEvent(ctx context.Context, db executor, e *model.RowEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO row_events (topic, key_kind, key_value, actor, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.Topic, string(e.Key.Kind), e.Key.Value, nullString(e.Actor), jsonbBytes(e.Payload), e.CreatedAt,
	).Scan(&e.ID)
}

func queryGetRowEvents(ctx context.Context, db executor, key model.RowKey) ([]*model.RowEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, key_kind, key_value, actor, payload, created_at
		FROM row_events
		WHERE key_kind = $1 AND key_value = $2
		ORDER BY created_at, id`,
		string(key.Kind), key.Value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRowEvents(rows)
}
