// Package transform builds the per-project banking rows from raw backend
// entities. Rows are a derived projection: rebuilt in full on every data
// load, and rebuilt for a single project after a targeted save.
package transform

import (
	"log/slog"

	"github.com/oakmontcap/lendboard/internal/model"
)

// Entities is the raw material for a build: the bulk-load result from the
// backend, unfiltered.
type Entities struct {
	Projects          []model.Project
	Loans             []model.Loan
	Participations    []model.Participation
	Covenants         []model.Covenant
	Guarantees        []model.Guarantee
	EquityCommitments []model.EquityCommitment
}

// BankingRows flattens one row per project, pre-joining the construction and
// permanent loans plus the nested records filtered to that project. Output
// order follows project input order.
func BankingRows(e Entities) []model.BankingRow {
	rows := make([]model.BankingRow, 0, len(e.Projects))
	for i := range e.Projects {
		rows = append(rows, BankingRow(&e.Projects[i], e))
	}
	return rows
}

// BankingRow builds the row for a single project; used for the targeted
// single-row rebuild after a save.
func BankingRow(p *model.Project, e Entities) model.BankingRow {
	row := model.BankingRow{
		ProjectID:    p.ID,
		ProjectName:  p.Name,
		City:         p.City,
		State:        p.State,
		Region:       p.Region,
		Units:        p.Units,
		ProductType:  p.ProductType,
		Stage:        p.Stage,
		DealSequence: p.DealSequence,
	}

	for i := range e.Loans {
		l := &e.Loans[i]
		if l.ProjectID != p.ID {
			continue
		}
		switch l.Phase {
		case model.PhaseConstruction:
			if row.Construction != nil {
				// At most one loan per phase; extras are a data fault.
				slog.Warn("duplicate construction loan ignored",
					"project_id", p.ID, "loan_id", l.ID)
				continue
			}
			row.Construction = l
		case model.PhasePermanent:
			if row.Permanent != nil {
				slog.Warn("duplicate permanent loan ignored",
					"project_id", p.ID, "loan_id", l.ID)
				continue
			}
			row.Permanent = l
		default:
			slog.Warn("loan has unknown phase", "project_id", p.ID,
				"loan_id", l.ID, "phase", l.Phase)
		}
	}

	for _, pt := range e.Participations {
		if pt.ProjectID == p.ID {
			row.Participations = append(row.Participations, pt)
		}
	}
	markLeads(row.Participations)

	for _, c := range e.Covenants {
		if c.ProjectID == p.ID {
			row.Covenants = append(row.Covenants, c)
		}
	}
	for _, g := range e.Guarantees {
		if g.ProjectID == p.ID {
			row.Guarantees = append(row.Guarantees, g)
		}
	}
	for _, ec := range e.EquityCommitments {
		if ec.ProjectID == p.ID {
			row.EquityCommitments = append(row.EquityCommitments, ec)
		}
	}

	return row
}

// markLeads designates the bank with the largest share of each loan as lead.
// First-found wins a tie so the designation is deterministic.
func markLeads(parts []model.Participation) {
	best := make(map[int64]int) // loan ID -> index of largest share
	for i := range parts {
		parts[i].Lead = false
		j, ok := best[parts[i].LoanID]
		if !ok || parts[i].Share.GreaterThan(parts[j].Share) {
			best[parts[i].LoanID] = i
		}
	}
	for _, i := range best {
		parts[i].Lead = true
	}
}
