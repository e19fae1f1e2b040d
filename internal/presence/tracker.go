// Package presence tracks which analysts are actively working the board.
//
// The Tracker keeps an in-memory roster updated by the server whenever an
// analyst saves a row or sends an explicit heartbeat. A background reaper
// marks idle analysts stale after a threshold and eventually evicts them,
// so the roster never grows without bound.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry is a single analyst's live state as exposed by the roster endpoint.
type Entry struct {
	Actor               string    `json:"actor"`
	LastSeen            time.Time `json:"last_seen"`
	FirstSeen           time.Time `json:"first_seen"`
	LastAction          string    `json:"last_action"`        // "save", "heartbeat"
	RowKey              string    `json:"row_key,omitempty"`  // last row touched
	IdleSecs            float64   `json:"idle_secs"`
	EventCount          int64     `json:"event_count"`
	SessionDurationSecs float64   `json:"session_duration_secs"`
	Stale               bool      `json:"stale,omitempty"`
	StaleAt             time.Time `json:"stale_at,omitempty"`
}

// ReaperConfig configures the background stale-analyst reaper.
type ReaperConfig struct {
	// StaleThreshold is how long an analyst must be idle before being
	// marked stale. Default: 15 minutes.
	StaleThreshold time.Duration

	// EvictAfter is how long after going stale before an analyst is removed
	// from the in-memory map. Default: 30 minutes.
	EvictAfter time.Duration

	// SweepInterval is how often the reaper scans the roster.
	// Default: 60 seconds.
	SweepInterval time.Duration

	// OnStale is called for each analyst newly marked stale.
	// Called outside the lock.
	OnStale func(actor string)
}

// Tracker maintains the in-memory analyst roster.
type Tracker struct {
	mu      sync.RWMutex
	actors  map[string]*actorState
	started time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type actorState struct {
	firstSeen  time.Time
	lastSeen   time.Time
	lastAction string
	rowKey     string
	eventCount int64
	stale      bool
	staleAt    time.Time
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		actors:  make(map[string]*actorState),
		started: time.Now(),
	}
}

// Touch records activity for an analyst. rowKey may be empty for actions
// that are not tied to a specific row.
func (t *Tracker) Touch(actor, action, rowKey string) {
	if actor == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.actors[actor]
	if !ok {
		state = &actorState{firstSeen: now}
		t.actors[actor] = state
	}

	if state.stale {
		slog.Info("presence: analyst back after going stale", "actor", actor)
		state.stale = false
		state.staleAt = time.Time{}
	}

	state.lastSeen = now
	state.lastAction = action
	state.eventCount++
	if rowKey != "" {
		state.rowKey = rowKey
	}
}

// Roster returns a snapshot of tracked analysts, most recently active first.
// staleThreshold excludes analysts idle longer than it; 0 includes everyone.
func (t *Tracker) Roster(staleThreshold time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.actors))

	for actor, state := range t.actors {
		idle := now.Sub(state.lastSeen)
		if staleThreshold > 0 && idle > staleThreshold {
			continue
		}

		firstSeen := state.firstSeen
		if firstSeen.IsZero() {
			firstSeen = t.started
		}

		entries = append(entries, Entry{
			Actor:               actor,
			LastSeen:            state.lastSeen,
			FirstSeen:           firstSeen,
			LastAction:          state.lastAction,
			RowKey:              state.rowKey,
			IdleSecs:            idle.Seconds(),
			EventCount:          state.eventCount,
			SessionDurationSecs: now.Sub(firstSeen).Seconds(),
			Stale:               state.stale,
			StaleAt:             state.staleAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})

	return entries
}

// StartReaper launches a background goroutine that periodically marks idle
// analysts stale. Call Stop to shut it down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.StaleThreshold == 0 {
		cfg.StaleThreshold = 15 * time.Minute
	}
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 60 * time.Second
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})

	go t.reapLoop(cfg)
	slog.Info("presence: reaper started",
		"stale_threshold", cfg.StaleThreshold,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine. Safe to call without StartReaper.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg *ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg)
		}
	}
}

func (t *Tracker) sweep(cfg *ReaperConfig) {
	now := time.Now()

	var newlyStale []string

	t.mu.Lock()
	for actor, state := range t.actors {
		if state.stale {
			if !state.staleAt.IsZero() && now.Sub(state.staleAt) > cfg.EvictAfter {
				delete(t.actors, actor)
			}
			continue
		}
		if now.Sub(state.lastSeen) > cfg.StaleThreshold {
			state.stale = true
			state.staleAt = now
			newlyStale = append(newlyStale, actor)
		}
	}
	t.mu.Unlock()

	for _, actor := range newlyStale {
		slog.Info("presence: analyst marked stale",
			"actor", actor, "threshold", cfg.StaleThreshold)
		if cfg.OnStale != nil {
			cfg.OnStale(actor)
		}
	}
}
