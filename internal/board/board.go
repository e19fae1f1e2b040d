// Package board holds the reconciled row set and orchestrates the data flow:
// bulk load from the backend and the feeds, transform, reconcile, snapshot,
// publish. The row set lives behind a mutex in an explicit container; callers
// read through Rows and Row and mutate only through Save and Refresh.
package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oakmontcap/lendboard/internal/client"
	"github.com/oakmontcap/lendboard/internal/events"
	"github.com/oakmontcap/lendboard/internal/feed"
	"github.com/oakmontcap/lendboard/internal/match"
	"github.com/oakmontcap/lendboard/internal/model"
	"github.com/oakmontcap/lendboard/internal/reconcile"
	"github.com/oakmontcap/lendboard/internal/store"
	"github.com/oakmontcap/lendboard/internal/transform"
	"github.com/oakmontcap/lendboard/internal/view"
)

// ErrRefreshInProgress is returned when a refresh is requested while another
// one is still running. There is no queueing; the caller retries later.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// ErrRowNotFound is returned by Row and Save for an unknown row key.
var ErrRowNotFound = errors.New("row not found")

// Options configures a Board. Backend is required; the rest degrade to
// harmless defaults (no feeds, no persistence, no events).
type Options struct {
	Backend       client.Backend
	Feeds         feed.Source
	StatusAlias   string
	ScheduleAlias string
	Store         store.Store
	Publisher     events.Publisher
}

// Board is the stateful core of the service.
type Board struct {
	backend       client.Backend
	feeds         feed.Source
	statusAlias   string
	scheduleAlias string
	store         store.Store
	pub           events.Publisher

	refreshing atomic.Bool

	mu          sync.RWMutex
	rows        []model.JoinedRow
	entities    transform.Entities
	refreshedAt time.Time

	edits *editTracker
}

func New(opts Options) *Board {
	pub := opts.Publisher
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	return &Board{
		backend:       opts.Backend,
		feeds:         opts.Feeds,
		statusAlias:   opts.StatusAlias,
		scheduleAlias: opts.ScheduleAlias,
		store:         opts.Store,
		pub:           pub,
		edits:         newEditTracker(),
	}
}

// RefreshStats summarizes a completed refresh.
type RefreshStats struct {
	RowCount     int       `json:"row_count"`
	MatchedPairs int       `json:"matched_pairs"`
	StatusOnly   int       `json:"status_only"`
	BankingOnly  int       `json:"banking_only"`
	RefreshedAt  time.Time `json:"refreshed_at"`
}

// Refresh reloads everything and rebuilds the row set. A second refresh while
// one is in flight returns ErrRefreshInProgress. An unavailable collaborator
// degrades to empty data with a warning; Refresh itself does not fail on it.
func (b *Board) Refresh(ctx context.Context) (*RefreshStats, error) {
	if !b.refreshing.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}
	defer b.refreshing.Store(false)

	var (
		ents     transform.Entities
		status   []model.StatusRow
		schedule []model.ScheduleRow
	)

	var wg sync.WaitGroup
	load := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				slog.Warn("bulk load failed, using empty data", "entity", name, "error", err)
			}
		}()
	}

	load("projects", func() (err error) {
		ents.Projects, err = b.backend.ListProjects(ctx)
		return
	})
	load("loans", func() (err error) {
		ents.Loans, err = b.backend.ListLoans(ctx)
		return
	})
	load("participations", func() (err error) {
		ents.Participations, err = b.backend.ListParticipations(ctx)
		return
	})
	load("covenants", func() (err error) {
		ents.Covenants, err = b.backend.ListCovenants(ctx)
		return
	})
	load("guarantees", func() (err error) {
		ents.Guarantees, err = b.backend.ListGuarantees(ctx)
		return
	})
	load("equity_commitments", func() (err error) {
		ents.EquityCommitments, err = b.backend.ListEquityCommitments(ctx)
		return
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		status = feed.StatusRows(ctx, b.feeds, b.statusAlias)
		schedule = feed.ScheduleRows(ctx, b.feeds, b.scheduleAlias)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	banking := transform.BankingRows(ents)
	rows := reconcile.Reconcile(status, banking)
	attachSchedule(rows, schedule)

	stats := &RefreshStats{RowCount: len(rows), RefreshedAt: time.Now().UTC()}
	for i := range rows {
		switch {
		case rows[i].Status != nil && rows[i].Banking != nil:
			stats.MatchedPairs++
		case rows[i].Status != nil:
			stats.StatusOnly++
		default:
			stats.BankingOnly++
		}
	}

	b.mu.Lock()
	b.rows = rows
	b.entities = ents
	b.refreshedAt = stats.RefreshedAt
	b.mu.Unlock()

	b.snapshot(ctx, rows)

	if err := b.pub.Publish(ctx, events.TopicRowsRefreshed, events.RowsRefreshed{
		RowCount:     stats.RowCount,
		MatchedPairs: stats.MatchedPairs,
		StatusOnly:   stats.StatusOnly,
		BankingOnly:  stats.BankingOnly,
	}); err != nil {
		slog.Warn("publish rows.refreshed failed", "error", err)
	}

	slog.Info("board refreshed",
		"rows", stats.RowCount,
		"matched", stats.MatchedPairs,
		"status_only", stats.StatusOnly,
		"banking_only", stats.BankingOnly)

	return stats, nil
}

// snapshot persists the row set; persistence failures are logged, not fatal.
func (b *Board) snapshot(ctx context.Context, rows []model.JoinedRow) {
	if b.store == nil {
		return
	}
	snap := &model.Snapshot{Rows: rows}
	if err := b.store.SaveSnapshot(ctx, snap); err != nil {
		slog.Warn("snapshot save failed", "error", err)
		return
	}
	if err := b.pub.Publish(ctx, events.TopicSnapshotSaved, events.SnapshotSaved{
		SnapshotID: snap.ID,
		RowCount:   snap.RowCount,
	}); err != nil {
		slog.Warn("publish snapshot.saved failed", "error", err)
	}
}

// Rows returns the current rows projected through the filter.
func (b *Board) Rows(f model.RowFilter) []model.JoinedRow {
	b.mu.RLock()
	rows := b.rows
	b.mu.RUnlock()
	return view.Apply(rows, f)
}

// Row returns the row whose key value matches, real or synthetic.
func (b *Board) Row(keyValue string) (model.JoinedRow, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range b.rows {
		if b.rows[i].Key.Value == keyValue {
			return b.rows[i], nil
		}
	}
	return model.JoinedRow{}, ErrRowNotFound
}

// RefreshedAt reports when the row set was last rebuilt; zero before the
// first refresh.
func (b *Board) RefreshedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.refreshedAt
}

// Refreshing reports whether a refresh is currently in flight.
func (b *Board) Refreshing() bool {
	return b.refreshing.Load()
}

// DirtyFields lists the field names with pending edits for a row key.
func (b *Board) DirtyFields(keyValue string) []string {
	return b.edits.pending(keyValue)
}

// attachSchedule folds the schedule feed into the joined rows by fuzzy name
// match. Schedule values never override an existing field; the banking and
// status sources win.
func attachSchedule(rows []model.JoinedRow, schedule []model.ScheduleRow) {
	if len(schedule) == 0 {
		return
	}
	names := make([]string, len(rows))
	for i := range rows {
		names[i] = rows[i].PropertyName
	}
	for i := range schedule {
		sr := &schedule[i]
		idx := match.BestMatch(sr.Property, names)
		if idx < 0 {
			slog.Warn("schedule row matched no board row", "property", sr.Property)
			continue
		}
		row := &rows[idx]
		if row.Fields == nil {
			row.Fields = make(map[string]string, len(sr.Fields))
		}
		for k, v := range sr.Fields {
			if _, exists := row.Fields[k]; !exists && v != "" {
				row.Fields[k] = v
			}
		}
	}
}
