package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/oakmontcap/lendboard/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanSnapshot scans a snapshot row. When withRows is true the rows JSONB
// column is expected and decoded.
func scanSnapshot(row scannable, withRows bool) (*model.Snapshot, error) {
	var s model.Snapshot
	if !withRows {
		if err := row.Scan(&s.ID, &s.TakenAt, &s.RowCount); err != nil {
			return nil, err
		}
		return &s, nil
	}

	var raw []byte
	if err := row.Scan(&s.ID, &s.TakenAt, &s.RowCount, &raw); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.Rows); err != nil {
			return nil, fmt.Errorf("decode snapshot rows: %w", err)
		}
	}
	return &s, nil
}

func scanSnapshotMetas(rows *sql.Rows) ([]*model.Snapshot, error) {
	var snaps []*model.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snaps, nil
}

func scanPreference(row scannable) (*model.Preference, error) {
	var p model.Preference
	var filter []byte
	if err := row.Scan(&p.View, &filter, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(filter) > 0 {
		if err := json.Unmarshal(filter, &p.Filter); err != nil {
			return nil, fmt.Errorf("decode preference filter: %w", err)
		}
	}
	return &p, nil
}

func scanPreferences(rows *sql.Rows) ([]*model.Preference, error) {
	var prefs []*model.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prefs, nil
}

func scanRowEvent(row scannable) (*model.RowEvent, error) {
	var e model.RowEvent
	var (
		kind    string
		actor   sql.NullString
		payload []byte
	)
	if err := row.Scan(&e.ID, &e.Topic, &kind, &e.Key.Value, &actor, &payload, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Key.Kind = model.KeyKind(kind)
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

func scanRowEvents(rows *sql.Rows) ([]*model.RowEvent, error) {
	var events []*model.RowEvent
	for rows.Next() {
		e, err := scanRowEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
