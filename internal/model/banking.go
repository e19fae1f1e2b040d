package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// BankingRow is the derived, per-project flat projection the board operates
// on: the project joined with its construction and permanent loans plus the
// nested records filtered to that project. Rows are rebuilt in full on every
// data load, and rebuilt for a single project after a targeted save.
type BankingRow struct {
	ProjectID    int64  `json:"project_id"`
	ProjectName  string `json:"project_name"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Region       string `json:"region,omitempty"`
	Units        int    `json:"units,omitempty"`
	ProductType  string `json:"product_type,omitempty"`
	Stage        Stage  `json:"stage"`
	DealSequence *int   `json:"deal_sequence,omitempty"`

	Construction *Loan `json:"construction,omitempty"`
	Permanent    *Loan `json:"permanent,omitempty"`

	Participations    []Participation    `json:"participations,omitempty"`
	Covenants         []Covenant         `json:"covenants,omitempty"`
	Guarantees        []Guarantee        `json:"guarantees,omitempty"`
	EquityCommitments []EquityCommitment `json:"equity_commitments,omitempty"`
}

// Flatten returns the row's display fields keyed by logical field name.
// Dates render as YYYY-MM-DD and money as plain decimal strings so the
// sort engine can classify them uniformly.
func (r *BankingRow) Flatten() map[string]string {
	f := map[string]string{
		"ProjectName": r.ProjectName,
		"City":        r.City,
		"State":       r.State,
		"Region":      r.Region,
		"ProductType": r.ProductType,
		"Stage":       string(r.Stage),
	}
	if r.Units > 0 {
		f["Units"] = strconv.Itoa(r.Units)
	}
	if r.DealSequence != nil {
		f["DealSequence"] = strconv.Itoa(*r.DealSequence)
	}
	flattenLoan(f, "Con", r.Construction)
	flattenLoan(f, "Perm", r.Permanent)
	return f
}

func flattenLoan(f map[string]string, prefix string, l *Loan) {
	if l == nil {
		return
	}
	f[prefix+"Lender"] = l.LenderName
	if !l.Amount.Equal(decimal.Zero) {
		f[prefix+"Amount"] = l.Amount.String()
	}
	if l.Rate != "" {
		f[prefix+"Rate"] = l.Rate
	}
	putDate(f, prefix+"ClosingDate", l.ClosingDate)
	putDate(f, prefix+"MaturityDate", l.MaturityDate)
	putDate(f, prefix+"IOMaturityDate", l.IOMaturityDate)
}

func putDate(f map[string]string, key string, t *time.Time) {
	if t != nil && !t.IsZero() {
		f[key] = t.Format("2006-01-02")
	}
}
