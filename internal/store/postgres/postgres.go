// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/oakmontcap/lendboard/internal/model"
	"github.com/oakmontcap/lendboard/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	return querySaveSnapshot(ctx, s.db, snap)
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id int64) (*model.Snapshot, error) {
	return queryGetSnapshot(ctx, s.db, id)
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	return queryLatestSnapshot(ctx, s.db)
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, limit int) ([]*model.Snapshot, error) {
	return queryListSnapshots(ctx, s.db, limit)
}

func (s *PostgresStore) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	return queryPruneSnapshots(ctx, s.db, keep)
}

func (s *PostgresStore) SetPreference(ctx context.Context, pref *model.Preference) error {
	return querySetPreference(ctx, s.db, pref)
}

func (s *PostgresStore) GetPreference(ctx context.Context, view string) (*model.Preference, error) {
	return queryGetPreference(ctx, s.db, view)
}

func (s *PostgresStore) ListPreferences(ctx context.Context) ([]*model.Preference, error) {
	return queryListPreferences(ctx, s.db)
}

func (s *PostgresStore) DeletePreference(ctx context.Context, view string) error {
	return queryDeletePreference(ctx, s.db, view)
}

func (s *PostgresStore) RecordRowEvent(ctx context.Context, event *model.RowEvent) error {
	return queryRecordRowEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetRowEvents(ctx context.Context, key model.RowKey) ([]*model.RowEvent, error) {
	return queryGetRowEvents(ctx, s.db, key)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	return querySaveSnapshot(ctx, s.tx, snap)
}

func (s *txStore) GetSnapshot(ctx context.Context, id int64) (*model.Snapshot, error) {
	return queryGetSnapshot(ctx, s.tx, id)
}

func (s *txStore) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	return queryLatestSnapshot(ctx, s.tx)
}

func (s *txStore) ListSnapshots(ctx context.Context, limit int) ([]*model.Snapshot, error) {
	return queryListSnapshots(ctx, s.tx, limit)
}

func (s *txStore) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	return queryPruneSnapshots(ctx, s.tx, keep)
}

func (s *txStore) SetPreference(ctx context.Context, pref *model.Preference) error {
	return querySetPreference(ctx, s.tx, pref)
}

func (s *txStore) GetPreference(ctx context.Context, view string) (*model.Preference, error) {
	return queryGetPreference(ctx, s.tx, view)
}

func (s *txStore) ListPreferences(ctx context.Context) ([]*model.Preference, error) {
	return queryListPreferences(ctx, s.tx)
}

func (s *txStore) DeletePreference(ctx context.Context, view string) error {
	return queryDeletePreference(ctx, s.tx, view)
}

func (s *txStore) RecordRowEvent(ctx context.Context, event *model.RowEvent) error {
	return queryRecordRowEvent(ctx, s.tx, event)
}

func (s *txStore) GetRowEvents(ctx context.Context, key model.RowKey) ([]*model.RowEvent, error) {
	return queryGetRowEvents(ctx, s.tx, key)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
