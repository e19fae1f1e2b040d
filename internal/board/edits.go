package board

import (
	"sort"
	"sync"
)

// editTracker keeps the per-row set of fields with unsaved changes. State is
// in-memory only and never persisted: it exists so a failed save leaves the
// changed fields visibly dirty until a later save succeeds.
type editTracker struct {
	mu     sync.Mutex
	states map[string]map[string]bool // key value -> changed field set
}

func newEditTracker() *editTracker {
	return &editTracker{states: make(map[string]map[string]bool)}
}

// mark records fields as dirty, creating the row's state lazily.
func (t *editTracker) mark(keyValue string, fields ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.states[keyValue]
	if !ok {
		set = make(map[string]bool, len(fields))
		t.states[keyValue] = set
	}
	for _, f := range fields {
		set[f] = true
	}
}

// pending returns the dirty field names for a row, sorted for stable output.
func (t *editTracker) pending(keyValue string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.states[keyValue]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// clear drops a row's dirty state after a successful save.
func (t *editTracker) clear(keyValue string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, keyValue)
}
