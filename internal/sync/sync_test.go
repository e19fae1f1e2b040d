package sync

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oakmontcap/lendboard/internal/model"
)

// fakeSource serves a fixed row set.
type fakeSource struct {
	rows        []model.JoinedRow
	refreshedAt time.Time
}

func (f *fakeSource) Rows(_ model.RowFilter) []model.JoinedRow {
	return append([]model.JoinedRow(nil), f.rows...)
}

func (f *fakeSource) RefreshedAt() time.Time { return f.refreshedAt }

// fakeDestination records writes.
type fakeDestination struct {
	mu     sync.Mutex
	writes [][]byte
	err    error
}

func (f *fakeDestination) Write(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, append([]byte(nil), data...))
	return nil
}

func (f *fakeDestination) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func testRows() []model.JoinedRow {
	return []model.JoinedRow{
		{Key: model.RealKey("Riverbend Commons"), PropertyName: "Riverbend Commons", Stage: model.StageStabilized},
		{Key: model.RealKey("Madison Summit"), PropertyName: "Madison Summit", Stage: model.StageUnderConstruction},
	}
}

func TestExportJSONL(t *testing.T) {
	src := &fakeSource{rows: testRows(), refreshedAt: time.Now().UTC()}

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), src, &buf); err != nil {
		t.Fatalf("ExportJSONL: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var hdr header
	if err := json.Unmarshal([]byte(lines[0]), &hdr); err != nil {
		t.Fatalf("header: %v", err)
	}
	if hdr.Type != "header" || hdr.RowCount != 2 || hdr.Version != "1" {
		t.Errorf("header = %+v", hdr)
	}

	// Rows sorted by key.
	if !strings.Contains(lines[1], "Madison Summit") {
		t.Errorf("line 1 = %q, want Madison Summit first", lines[1])
	}
	if !strings.Contains(lines[2], "Riverbend Commons") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestExportJSONL_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), &fakeSource{}, &buf); err != nil {
		t.Fatalf("ExportJSONL: %v", err)
	}
	var hdr header
	if err := json.Unmarshal(buf.Bytes(), &hdr); err != nil {
		t.Fatalf("header: %v", err)
	}
	if hdr.RowCount != 0 {
		t.Errorf("RowCount = %d", hdr.RowCount)
	}
}

func TestExportJSONL_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, &fakeSource{}, &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestScheduler_RunsInitialExport(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	dest := &fakeDestination{}

	s := NewScheduler(src, []Destination{dest}, time.Hour, slog.Default())
	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for dest.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no export within deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	dest.mu.Lock()
	data := dest.writes[0]
	dest.mu.Unlock()
	if !bytes.Contains(data, []byte("Madison Summit")) {
		t.Errorf("export payload missing rows: %q", data)
	}
}

func TestScheduler_DestinationFailureDoesNotStopOthers(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	failing := &fakeDestination{err: errors.New("bucket gone")}
	working := &fakeDestination{}

	s := NewScheduler(src, []Destination{failing, working}, time.Hour, slog.Default())
	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for working.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("working destination never written")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScheduler_StopIsIdempotentBeforeStart(t *testing.T) {
	s := NewScheduler(&fakeSource{}, nil, time.Hour, slog.Default())
	s.Stop() // must not panic without Start
}
