package presence

import (
	"testing"
	"time"
)

func TestTouch_BasicTracking(t *testing.T) {
	tr := New()

	tr.Touch("alice", "save", "Madison Summit")

	roster := tr.Roster(0)
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(roster))
	}

	e := roster[0]
	if e.Actor != "alice" {
		t.Errorf("expected actor alice, got %s", e.Actor)
	}
	if e.LastAction != "save" {
		t.Errorf("expected last_action save, got %s", e.LastAction)
	}
	if e.RowKey != "Madison Summit" {
		t.Errorf("expected row_key Madison Summit, got %s", e.RowKey)
	}
	if e.EventCount != 1 {
		t.Errorf("expected event_count 1, got %d", e.EventCount)
	}
}

func TestTouch_UpdatesExistingActor(t *testing.T) {
	tr := New()

	tr.Touch("bob", "heartbeat", "")
	tr.Touch("bob", "save", "Riverbend Commons")
	tr.Touch("bob", "heartbeat", "")

	roster := tr.Roster(0)
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(roster))
	}

	e := roster[0]
	if e.EventCount != 3 {
		t.Errorf("expected 3 events, got %d", e.EventCount)
	}
	if e.LastAction != "heartbeat" {
		t.Errorf("expected last_action heartbeat, got %s", e.LastAction)
	}
	// The last row touched survives actions without a row.
	if e.RowKey != "Riverbend Commons" {
		t.Errorf("expected row_key Riverbend Commons, got %s", e.RowKey)
	}
}

func TestTouch_IgnoresEmptyActor(t *testing.T) {
	tr := New()

	tr.Touch("", "save", "Madison Summit")

	if roster := tr.Roster(0); len(roster) != 0 {
		t.Fatalf("expected 0 entries for empty actor, got %d", len(roster))
	}
}

func TestRoster_StaleThreshold(t *testing.T) {
	tr := New()

	tr.Touch("old-analyst", "heartbeat", "")
	tr.Touch("new-analyst", "heartbeat", "")

	tr.mu.Lock()
	tr.actors["old-analyst"].lastSeen = time.Now().Add(-20 * time.Minute)
	tr.mu.Unlock()

	// With 10-minute threshold, only new-analyst should appear.
	roster := tr.Roster(10 * time.Minute)
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry with threshold, got %d", len(roster))
	}
	if roster[0].Actor != "new-analyst" {
		t.Errorf("expected new-analyst, got %s", roster[0].Actor)
	}

	// With 0 threshold, both should appear.
	if all := tr.Roster(0); len(all) != 2 {
		t.Fatalf("expected 2 entries without threshold, got %d", len(all))
	}
}

func TestRoster_SortedByMostRecent(t *testing.T) {
	tr := New()

	tr.Touch("first", "heartbeat", "")
	time.Sleep(5 * time.Millisecond)
	tr.Touch("second", "heartbeat", "")
	time.Sleep(5 * time.Millisecond)
	tr.Touch("third", "heartbeat", "")

	roster := tr.Roster(0)
	if len(roster) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(roster))
	}
	if roster[0].Actor != "third" {
		t.Errorf("expected third first, got %s", roster[0].Actor)
	}
	if roster[2].Actor != "first" {
		t.Errorf("expected first last, got %s", roster[2].Actor)
	}
}

func TestSweep_MarksIdleAnalystsStale(t *testing.T) {
	tr := New()

	tr.Touch("idle-analyst", "heartbeat", "")

	tr.mu.Lock()
	tr.actors["idle-analyst"].lastSeen = time.Now().Add(-20 * time.Minute)
	tr.mu.Unlock()

	var staleActors []string
	cfg := &ReaperConfig{
		StaleThreshold: 15 * time.Minute,
		EvictAfter:     30 * time.Minute,
		SweepInterval:  time.Second,
		OnStale: func(actor string) {
			staleActors = append(staleActors, actor)
		},
	}

	tr.sweep(cfg)

	if len(staleActors) != 1 || staleActors[0] != "idle-analyst" {
		t.Errorf("expected idle-analyst to go stale, got %v", staleActors)
	}

	for _, e := range tr.Roster(0) {
		if e.Actor == "idle-analyst" && !e.Stale {
			t.Error("expected idle-analyst to have stale=true")
		}
	}
}

func TestSweep_ReturningAnalystNotStale(t *testing.T) {
	tr := New()

	tr.Touch("returning", "heartbeat", "")
	tr.mu.Lock()
	tr.actors["returning"].lastSeen = time.Now().Add(-20 * time.Minute)
	tr.mu.Unlock()

	cfg := &ReaperConfig{StaleThreshold: 15 * time.Minute, EvictAfter: 30 * time.Minute}
	tr.sweep(cfg)

	// The analyst comes back.
	tr.Touch("returning", "save", "Madison Summit")

	for _, e := range tr.Roster(0) {
		if e.Actor == "returning" {
			if e.Stale {
				t.Error("expected returning analyst to have stale=false")
			}
			if e.EventCount != 2 {
				t.Errorf("expected 2 events, got %d", e.EventCount)
			}
			return
		}
	}
	t.Error("returning analyst not found in roster")
}

func TestSweep_EvictsLongStaleAnalysts(t *testing.T) {
	tr := New()

	tr.Touch("gone", "heartbeat", "")
	tr.mu.Lock()
	state := tr.actors["gone"]
	state.lastSeen = time.Now().Add(-2 * time.Hour)
	state.stale = true
	state.staleAt = time.Now().Add(-45 * time.Minute)
	tr.mu.Unlock()

	cfg := &ReaperConfig{
		StaleThreshold: 15 * time.Minute,
		EvictAfter:     30 * time.Minute,
	}

	tr.sweep(cfg)

	tr.mu.RLock()
	_, exists := tr.actors["gone"]
	tr.mu.RUnlock()

	if exists {
		t.Error("expected long-stale analyst to be evicted")
	}
}

func TestStartReaper_StopsCleanly(t *testing.T) {
	tr := New()

	tr.StartReaper(&ReaperConfig{
		SweepInterval: 50 * time.Millisecond,
	})

	// Let it run a couple sweeps.
	time.Sleep(150 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		tr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return within 2 seconds")
	}
}

func TestStop_WithoutStartReaper(t *testing.T) {
	New().Stop() // must not panic
}
