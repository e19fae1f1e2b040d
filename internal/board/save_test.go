package board

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/oakmontcap/lendboard/internal/events"
	"github.com/oakmontcap/lendboard/internal/model"
)

func refreshedBoard(t *testing.T, f *fakeBackend, pub events.Publisher) *Board {
	t.Helper()
	b := newTestBoard(f, testSource(), pub)
	if _, err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return b
}

func TestSave_ConcurrentUpdates(t *testing.T) {
	f := testBackend()
	pub := &fakePublisher{}
	b := refreshedBoard(t, f, pub)

	changes := map[string]string{
		"Units":     "240",
		"ConAmount": "45000000",
		"PermRate":  "4.85%",
	}
	row, err := b.Save(context.Background(), "Madison Summit", changes, "analyst")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if f.projectUpdates != 1 {
		t.Errorf("project updates = %d, want 1", f.projectUpdates)
	}
	if f.loanUpdates[model.PhaseConstruction] != 1 {
		t.Errorf("construction updates = %d, want 1", f.loanUpdates[model.PhaseConstruction])
	}
	if f.loanUpdates[model.PhasePermanent] != 1 {
		t.Errorf("permanent updates = %d, want 1", f.loanUpdates[model.PhasePermanent])
	}

	// Row rebuilt with the new values.
	if row.Fields["Units"] != "240" {
		t.Errorf("Units = %q, want 240", row.Fields["Units"])
	}
	if row.Fields["ConAmount"] != "45000000" {
		t.Errorf("ConAmount = %q", row.Fields["ConAmount"])
	}
	if row.Fields["PermRate"] != "4.85%" {
		t.Errorf("PermRate = %q", row.Fields["PermRate"])
	}
	// Feed-only fields survive the rebuild.
	if row.Fields["PctComplete"] != "62" {
		t.Errorf("PctComplete = %q, want 62", row.Fields["PctComplete"])
	}

	if !pub.published(events.TopicRowSaved) {
		t.Error("row.saved not published")
	}
	if got := b.DirtyFields("Madison Summit"); got != nil {
		t.Errorf("dirty fields after save = %v, want none", got)
	}
}

// Readers iterate the row set while a save rebuilds one row; the rebuild must
// swap in a fresh slice rather than write into the array readers still hold.
func TestSave_RowsReadableDuringSave(t *testing.T) {
	f := testBackend()
	b := refreshedBoard(t, f, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if rows := b.Rows(model.RowFilter{Search: "madison"}); len(rows) != 1 {
				t.Errorf("rows during save = %d, want 1", len(rows))
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			changes := map[string]string{"Units": strconv.Itoa(200 + i)}
			if _, err := b.Save(context.Background(), "Madison Summit", changes, "analyst"); err != nil {
				t.Errorf("Save: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	row, err := b.Row("Madison Summit")
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if row.Fields["Units"] != "399" {
		t.Errorf("Units = %q, want 399", row.Fields["Units"])
	}
}

func TestSave_ValidationBeforeNetwork(t *testing.T) {
	f := testBackend()
	b := refreshedBoard(t, f, nil)

	for name, changes := range map[string]map[string]string{
		"unknown field":   {"Color": "blue"},
		"bad units":       {"Units": "many"},
		"bad stage":       {"Stage": "Finished"},
		"bad amount":      {"ConAmount": "lots"},
		"bad date":        {"ConMaturityDate": "soon"},
		"unknown loan":    {"ConFlavor": "x"},
		"empty changeset": {},
	} {
		_, err := b.Save(context.Background(), "Madison Summit", changes, "")
		var ve ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: err = %v, want ValidationError", name, err)
		}
	}

	if f.projectUpdates != 0 || len(f.loanUpdates) != 0 {
		t.Errorf("backend called despite validation failure: %d project, %v loan",
			f.projectUpdates, f.loanUpdates)
	}
}

func TestSave_SyntheticOrFeedOnlyRowRejected(t *testing.T) {
	f := testBackend()
	b := refreshedBoard(t, f, nil)

	// Hilltop Yards is a status-only row with no backend project.
	_, err := b.Save(context.Background(), "Hilltop Yards", map[string]string{"Units": "1"}, "")
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
	if f.projectUpdates != 0 {
		t.Error("backend called for a row without a project")
	}
}

func TestSave_MissingLoanPhaseRejected(t *testing.T) {
	f := testBackend()
	b := refreshedBoard(t, f, nil)

	// Riverbend Commons has no permanent loan.
	_, err := b.Save(context.Background(), "Riverbend Commons", map[string]string{"PermRate": "5%"}, "")
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestSave_UnknownKey(t *testing.T) {
	b := refreshedBoard(t, testBackend(), nil)
	if _, err := b.Save(context.Background(), "Nowhere", map[string]string{"Units": "1"}, ""); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("err = %v, want ErrRowNotFound", err)
	}
}

func TestSave_PartialFailureReported(t *testing.T) {
	f := testBackend()
	f.updateErr = errors.New("project locked by another session")
	pub := &fakePublisher{}
	b := refreshedBoard(t, f, pub)

	_, err := b.Save(context.Background(), "Madison Summit", map[string]string{
		"Units":     "240",
		"ConAmount": "45000000",
	}, "analyst")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "project locked by another session") {
		t.Errorf("error does not carry the backend message: %v", err)
	}
	// The loan update still went through; no rollback.
	if f.loanUpdates[model.PhaseConstruction] != 1 {
		t.Errorf("construction updates = %d, want 1", f.loanUpdates[model.PhaseConstruction])
	}
	if !pub.published(events.TopicRowSaveFailed) {
		t.Error("row.save_failed not published")
	}
	// The changed fields stay dirty until a save succeeds.
	if got := b.DirtyFields("Madison Summit"); len(got) != 2 {
		t.Errorf("dirty fields = %v, want 2 entries", got)
	}
}

func TestEditTracker(t *testing.T) {
	tr := newEditTracker()
	if got := tr.pending("k"); got != nil {
		t.Errorf("pending on empty tracker = %v", got)
	}

	tr.mark("k", "B", "A")
	tr.mark("k", "A") // idempotent
	if got := tr.pending("k"); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("pending = %v, want [A B]", got)
	}

	tr.clear("k")
	if got := tr.pending("k"); got != nil {
		t.Errorf("pending after clear = %v", got)
	}
}
