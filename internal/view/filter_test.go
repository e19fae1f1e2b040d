package view

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oakmontcap/lendboard/internal/model"
)

func stagedRow(name string, stage model.Stage) model.JoinedRow {
	r := row(name, map[string]string{"City": "Nashville"})
	r.Stage = stage
	return r
}

func TestFilter_StageMultiSelect(t *testing.T) {
	rows := []model.JoinedRow{
		stagedRow("alive", model.StageUnderConstruction),
		stagedRow("dead", model.StageDead),
		stagedRow("leasing", model.StageLeaseUp),
	}

	// The stage set includes everything except Dead: the Dead row is
	// excluded regardless of search query.
	f := model.RowFilter{
		Stages: []model.Stage{model.StageUnderConstruction, model.StageLeaseUp},
		Search: "nashville",
	}
	out := Filter(rows, f)
	assertOrder(t, out, "alive", "leasing")
}

func TestFilter_StageReadsProjectStageNotFeed(t *testing.T) {
	r := stagedRow("oakridge", model.StageUnderConstruction)
	// The feed claims a different stage; the canonical project stage governs.
	r.Status = &model.StatusRow{Property: "oakridge", Fields: map[string]string{"Stage": "Dead"}}

	out := Filter([]model.JoinedRow{r}, model.RowFilter{
		Stages: []model.Stage{model.StageUnderConstruction},
	})
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
}

func TestFilter_Search(t *testing.T) {
	rows := []model.JoinedRow{
		row("Oakridge Commons", map[string]string{"City": "Nashville"}),
		row("Harbor Point", map[string]string{"City": "Memphis"}),
	}

	out := Filter(rows, model.RowFilter{Search: "MEMPH"})
	assertOrder(t, out, "Harbor Point")

	out = Filter(rows, model.RowFilter{Search: ""})
	assertOrder(t, out, "Oakridge Commons", "Harbor Point")

	out = Filter(rows, model.RowFilter{Search: "no such thing"})
	if len(out) != 0 {
		t.Errorf("got %d rows, want 0", len(out))
	}
}

func TestFilter_SearchIncludesFeedFields(t *testing.T) {
	r := row("Oakridge Commons", nil)
	r.Status = &model.StatusRow{
		Property: "Oakridge",
		Fields:   map[string]string{"GC": "Turner Construction"},
	}

	out := Filter([]model.JoinedRow{r}, model.RowFilter{Search: "turner"})
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
}

func pivotFixture() []model.JoinedRow {
	banking := &model.BankingRow{
		ProjectID:   1,
		ProjectName: "Oakridge Commons",
		Participations: []model.Participation{
			{BankName: "First Bank", Share: decimal.NewFromFloat(0.6), Amount: decimal.NewFromInt(25_000_000), Lead: true},
			{BankName: "Second Bank", Share: decimal.NewFromFloat(0.4), Amount: decimal.NewFromInt(17_000_000)},
		},
		EquityCommitments: []model.EquityCommitment{
			{PartnerName: "Oak Capital", Amount: decimal.NewFromInt(10_000_000), Funded: decimal.NewFromInt(4_000_000)},
		},
	}
	statusOnly := model.JoinedRow{
		Key:          model.RealKey("Harbor Point"),
		PropertyName: "Harbor Point",
		Status:       &model.StatusRow{Property: "Harbor Point"},
		Fields:       map[string]string{"ProjectName": "Harbor Point"},
	}
	withBanking := model.JoinedRow{
		Key:          model.RealKey("Oakridge Commons"),
		PropertyName: "Oakridge Commons",
		Banking:      banking,
		Fields:       map[string]string{"ProjectName": "Oakridge Commons"},
	}
	return []model.JoinedRow{withBanking, statusOnly}
}

func TestByBank(t *testing.T) {
	out := ByBank(pivotFixture())
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].Fields["Bank"] != "First Bank" || out[0].Fields["Role"] != "Lead" {
		t.Errorf("lead row = %v", out[0].Fields)
	}
	if out[1].Fields["Bank"] != "Second Bank" || out[1].Fields["Role"] != "Participant" {
		t.Errorf("participant row = %v", out[1].Fields)
	}
}

func TestByEquity(t *testing.T) {
	out := ByEquity(pivotFixture())
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	if out[0].Fields["Partner"] != "Oak Capital" {
		t.Errorf("row = %v", out[0].Fields)
	}
	if out[0].Fields["Commitment"] != "10000000" || out[0].Fields["Funded"] != "4000000" {
		t.Errorf("amounts = %v", out[0].Fields)
	}
}

func TestApply_PivotDoesNotMutateInput(t *testing.T) {
	rows := pivotFixture()
	out := Apply(rows, model.RowFilter{Pivot: model.PivotBank, Sort: "Bank", Dir: model.SortAsc})
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if _, ok := rows[0].Fields["Bank"]; ok {
		t.Error("pivot mutated the source rows")
	}
}
