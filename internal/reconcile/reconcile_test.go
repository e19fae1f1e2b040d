package reconcile

import (
	"reflect"
	"strings"
	"testing"

	"github.com/oakmontcap/lendboard/internal/model"
)

func statusRow(property string, fields map[string]string) model.StatusRow {
	return model.StatusRow{Property: property, Fields: fields}
}

func bankingRow(name string, id int64) model.BankingRow {
	return model.BankingRow{ProjectID: id, ProjectName: name, Stage: model.StageUnderConstruction}
}

func TestReconcile_FuzzyContainmentMatch(t *testing.T) {
	status := []model.StatusRow{
		statusRow("Oakridge", map[string]string{"PercentComplete": "45"}),
	}
	banking := []model.BankingRow{bankingRow("Oakridge Commons", 7)}

	out := Reconcile(status, banking)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	row := out[0]
	if row.Status == nil || row.Banking == nil {
		t.Fatal("matched row must carry both back-references")
	}
	if row.Banking.ProjectID != 7 {
		t.Errorf("ProjectID = %d, want 7", row.Banking.ProjectID)
	}
	// The feed's human label is the display name; the canonical project name
	// is the key.
	if row.PropertyName != "Oakridge" {
		t.Errorf("PropertyName = %q, want %q", row.PropertyName, "Oakridge")
	}
	if row.Key.Value != "Oakridge Commons" || row.Key.Kind != model.KeyReal {
		t.Errorf("Key = %+v, want real Oakridge Commons", row.Key)
	}
	if row.Fields["PercentComplete"] != "45" {
		t.Errorf("feed field lost: %v", row.Fields)
	}
}

func TestReconcile_BankingFieldsWin(t *testing.T) {
	status := []model.StatusRow{
		statusRow("Oakridge Commons", map[string]string{"Stage": "Lease-Up", "City": "Memphis"}),
	}
	banking := []model.BankingRow{
		{ProjectID: 1, ProjectName: "Oakridge Commons", City: "Nashville", Stage: model.StageUnderConstruction},
	}

	out := Reconcile(status, banking)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	if out[0].Fields["City"] != "Nashville" {
		t.Errorf("City = %q, want banking value Nashville", out[0].Fields["City"])
	}
	// The canonical stage comes from the project, not the feed.
	if out[0].Stage != model.StageUnderConstruction {
		t.Errorf("Stage = %q, want Under Construction", out[0].Stage)
	}
}

func TestReconcile_UnmatchedStatusRow(t *testing.T) {
	status := []model.StatusRow{statusRow("Harbor Point", nil)}

	out := Reconcile(status, nil)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	row := out[0]
	if row.Banking != nil {
		t.Error("unmatched status row must have nil banking back-reference")
	}
	if row.Status == nil {
		t.Error("unmatched status row lost its status back-reference")
	}
	if row.Key.IsZero() {
		t.Error("row key must be non-empty")
	}
}

func TestReconcile_MalformedStatusRowGetsSyntheticKey(t *testing.T) {
	status := []model.StatusRow{statusRow("", map[string]string{"PercentComplete": "10"})}

	out := Reconcile(status, nil)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	row := out[0]
	if row.Key.Kind != model.KeySynthetic {
		t.Errorf("Key.Kind = %q, want synthetic", row.Key.Kind)
	}
	if !strings.HasPrefix(row.Key.Value, "syn-") {
		t.Errorf("Key.Value = %q, want syn- prefix", row.Key.Value)
	}
	if row.PropertyName == "" {
		t.Error("display key must be non-empty")
	}
}

func TestReconcile_Coverage(t *testing.T) {
	status := []model.StatusRow{
		statusRow("Oakridge", nil),
		statusRow("Harbor Point", nil),
		statusRow("", nil),
	}
	banking := []model.BankingRow{
		bankingRow("Oakridge Commons", 1),
		bankingRow("Canyon Creek", 2),
		bankingRow("", 3),
	}

	out := Reconcile(status, banking)

	matched := 0
	for _, row := range out {
		if row.Status != nil && row.Banking != nil {
			matched++
		}
		if row.Key.IsZero() {
			t.Errorf("row %q has empty key", row.PropertyName)
		}
	}
	// Every input row appears in exactly one output row.
	want := len(status) + len(banking) - matched
	if len(out) != want {
		t.Errorf("got %d rows, want %d (matched=%d)", len(out), want, matched)
	}
	if matched != 1 {
		t.Errorf("matched = %d, want 1", matched)
	}
}

func TestReconcile_DuplicateStatusKeysConsumedOnce(t *testing.T) {
	status := []model.StatusRow{
		statusRow("Oakridge", map[string]string{"Row": "first"}),
		statusRow("Oakridge", map[string]string{"Row": "second"}),
	}
	banking := []model.BankingRow{bankingRow("Oakridge Commons", 1)}

	out := Reconcile(status, banking)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	if out[0].Fields["Row"] != "first" {
		t.Errorf("Row = %q, want the first duplicate to win", out[0].Fields["Row"])
	}
}

func TestReconcile_OutputOrder(t *testing.T) {
	status := []model.StatusRow{
		statusRow("Zeta Flats", nil),
		statusRow("Oakridge", nil),
	}
	banking := []model.BankingRow{
		bankingRow("Alpha Lofts", 1),
		bankingRow("Oakridge Commons", 2),
		bankingRow("Beta Mills", 3),
	}

	out := Reconcile(status, banking)
	var names []string
	for _, row := range out {
		names = append(names, row.PropertyName)
	}
	// Status-order rows first (matched or not), then leftover banking rows in
	// banking input order.
	want := []string{"Zeta Flats", "Oakridge", "Alpha Lofts", "Beta Mills"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	status := []model.StatusRow{
		statusRow("Oakridge", nil),
		statusRow("Harbor Point", nil),
	}
	banking := []model.BankingRow{
		bankingRow("Oakridge Commons", 1),
		bankingRow("Harbor Point West", 2),
	}

	first := Reconcile(status, banking)
	second := Reconcile(status, banking)
	if len(first) != len(second) {
		t.Fatalf("row counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Errorf("row %d key differs: %+v vs %+v", i, first[i].Key, second[i].Key)
		}
		if (first[i].Banking == nil) != (second[i].Banking == nil) {
			t.Errorf("row %d pairing differs", i)
		}
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	if out := Reconcile(nil, nil); len(out) != 0 {
		t.Errorf("got %d rows, want 0", len(out))
	}
}
