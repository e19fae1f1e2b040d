package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/oakmontcap/lendboard/internal/model"
	"github.com/oakmontcap/lendboard/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var snapshotColumns = []string{"id", "taken_at", "row_count", "rows"}

func TestSaveSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	snap := &model.Snapshot{
		Rows: []model.JoinedRow{
			{Key: model.RealKey("Madison Summit"), PropertyName: "Madison Summit"},
			{Key: model.SyntheticKey("syn-a1"), PropertyName: "Unnamed"},
		},
	}

	mock.ExpectQuery("INSERT INTO snapshots").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	if err := s.SaveSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if snap.ID != 7 {
		t.Errorf("snap.ID = %d, want 7", snap.ID)
	}
	if snap.RowCount != 2 {
		t.Errorf("snap.RowCount = %d, want 2", snap.RowCount)
	}
	if snap.TakenAt.IsZero() {
		t.Error("snap.TakenAt not set")
	}
}

func TestGetSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	rowsJSON := `[{"key":{"kind":"real","value":"Madison Summit"},"property_name":"Madison Summit"}]`
	mock.ExpectQuery("SELECT id, taken_at, row_count, rows FROM snapshots WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).AddRow(int64(7), now, 1, []byte(rowsJSON)))

	snap, err := s.GetSnapshot(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if snap.ID != 7 || snap.RowCount != 1 {
		t.Errorf("snap = %+v", snap)
	}
	if len(snap.Rows) != 1 || snap.Rows[0].Key.Value != "Madison Summit" {
		t.Errorf("snap.Rows = %+v", snap.Rows)
	}
	if snap.Rows[0].Key.Kind != model.KeyReal {
		t.Errorf("key kind = %q, want real", snap.Rows[0].Key.Kind)
	}
}

func TestGetSnapshot_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery("SELECT id, taken_at, row_count, rows FROM snapshots WHERE id").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetSnapshot(context.Background(), 99)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestLatestSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, taken_at, row_count, rows FROM snapshots ORDER BY taken_at DESC").
		WillReturnRows(sqlmock.NewRows(snapshotColumns).AddRow(int64(12), now, 0, []byte(`[]`)))

	snap, err := s.LatestSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if snap.ID != 12 {
		t.Errorf("snap.ID = %d, want 12", snap.ID)
	}
	if len(snap.Rows) != 0 {
		t.Errorf("snap.Rows = %+v, want empty", snap.Rows)
	}
}

func TestListSnapshots(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, taken_at, row_count FROM snapshots ORDER BY taken_at DESC").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "taken_at", "row_count"}).
			AddRow(int64(3), now, 8).
			AddRow(int64(2), now.Add(-time.Hour), 7))

	snaps, err := s.ListSnapshots(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	if snaps[0].ID != 3 || snaps[0].RowCount != 8 {
		t.Errorf("snaps[0] = %+v", snaps[0])
	}
	if snaps[0].Rows != nil {
		t.Error("listing must not load snapshot rows")
	}
}

func TestListSnapshots_DefaultLimit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery("SELECT id, taken_at, row_count FROM snapshots").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "taken_at", "row_count"}))

	if _, err := s.ListSnapshots(context.Background(), 0); err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
}

func TestPruneSnapshots(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec("DELETE FROM snapshots").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.PruneSnapshots(context.Background(), 5)
	if err != nil {
		t.Fatalf("PruneSnapshots: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}
}

func TestSetPreference(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO preferences").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	pref := &model.Preference{
		View: "construction",
		Filter: model.RowFilter{
			Pivot:  model.PivotProperty,
			Stages: []model.Stage{model.StageUnderConstruction},
			Sort:   "PropertyName",
			Dir:    model.SortAsc,
		},
	}
	if err := s.SetPreference(context.Background(), pref); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}
	if pref.UpdatedAt.IsZero() {
		t.Error("pref.UpdatedAt not set")
	}
}

func TestGetPreference(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	filter := model.RowFilter{Pivot: model.PivotBank, Sort: "Bank", Dir: model.SortDesc}
	raw, _ := json.Marshal(filter)

	mock.ExpectQuery("SELECT view, filter, created_at, updated_at FROM preferences WHERE view").
		WithArgs("banks").
		WillReturnRows(sqlmock.NewRows([]string{"view", "filter", "created_at", "updated_at"}).
			AddRow("banks", raw, now, now))

	pref, err := s.GetPreference(context.Background(), "banks")
	if err != nil {
		t.Fatalf("GetPreference: %v", err)
	}
	if pref.View != "banks" || pref.Filter.Pivot != model.PivotBank || pref.Filter.Dir != model.SortDesc {
		t.Errorf("pref = %+v", pref)
	}
}

func TestListPreferences(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT view, filter, created_at, updated_at FROM preferences ORDER BY view").
		WillReturnRows(sqlmock.NewRows([]string{"view", "filter", "created_at", "updated_at"}).
			AddRow("banks", []byte(`{}`), now, now).
			AddRow("construction", []byte(`{}`), now, now))

	prefs, err := s.ListPreferences(context.Background())
	if err != nil {
		t.Fatalf("ListPreferences: %v", err)
	}
	if len(prefs) != 2 || prefs[0].View != "banks" {
		t.Errorf("prefs = %+v", prefs)
	}
}

func TestDeletePreference(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec("DELETE FROM preferences WHERE view").
		WithArgs("banks").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeletePreference(context.Background(), "banks"); err != nil {
		t.Fatalf("DeletePreference: %v", err)
	}
}

func TestDeletePreference_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec("DELETE FROM preferences WHERE view").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeletePreference(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestRecordRowEvent(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery("INSERT INTO row_events").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	e := &model.RowEvent{
		Topic:   "lendboard.row.saved",
		Key:     model.RealKey("Madison Summit"),
		Actor:   "analyst@oakmont",
		Payload: json.RawMessage(`{"Units":"240"}`),
	}
	if err := s.RecordRowEvent(context.Background(), e); err != nil {
		t.Fatalf("RecordRowEvent: %v", err)
	}
	if e.ID != 42 {
		t.Errorf("e.ID = %d, want 42", e.ID)
	}
	if e.CreatedAt.IsZero() {
		t.Error("e.CreatedAt not set")
	}
}

func TestGetRowEvents(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	cols := []string{"id", "topic", "key_kind", "key_value", "actor", "payload", "created_at"}
	mock.ExpectQuery("SELECT id, topic, key_kind, key_value, actor, payload, created_at").
		WithArgs("real", "Madison Summit").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "lendboard.row.saved", "real", "Madison Summit", "analyst", []byte(`{"Units":"240"}`), now).
			AddRow(int64(2), "lendboard.row.save_failed", "real", "Madison Summit", nil, nil, now))

	events, err := s.GetRowEvents(context.Background(), model.RealKey("Madison Summit"))
	if err != nil {
		t.Fatalf("GetRowEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Key.Kind != model.KeyReal || events[0].Actor != "analyst" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Actor != "" || events[1].Payload != nil {
		t.Errorf("events[1] = %+v", events[1])
	}
}

func TestRunInTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO snapshots").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO row_events").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		if err := tx.SaveSnapshot(context.Background(), &model.Snapshot{}); err != nil {
			return err
		}
		return tx.RecordRowEvent(context.Background(), &model.RowEvent{
			Topic: "lendboard.snapshot.saved",
			Key:   model.SyntheticKey("syn-x"),
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := fmt.Errorf("boom")
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestScanHelpers(t *testing.T) {
	// nullString
	if nullString("").Valid {
		t.Error("nullString(\"\") should be invalid")
	}
	if ns := nullString("hello"); !ns.Valid || ns.String != "hello" {
		t.Errorf("nullString(\"hello\") = %v", ns)
	}

	// jsonbBytes
	if jsonbBytes(nil) != nil {
		t.Error("jsonbBytes(nil) should be nil")
	}
	if jsonbBytes(json.RawMessage{}) != nil {
		t.Error("jsonbBytes({}) should be nil")
	}
	input := json.RawMessage(`{"key":"value"}`)
	if string(jsonbBytes(input)) != `{"key":"value"}` {
		t.Errorf("jsonbBytes = %s", jsonbBytes(input))
	}
}
