package view

import (
	"github.com/oakmontcap/lendboard/internal/model"
)

// ByBank explodes the property rows into one row per loan participation,
// carrying the bank, its share, and its lead/participant role as display
// fields. Rows without participations are omitted: the bank pivot shows
// exposure, not properties.
func ByBank(rows []model.JoinedRow) []model.JoinedRow {
	var out []model.JoinedRow
	for i := range rows {
		r := &rows[i]
		if r.Banking == nil {
			continue
		}
		for _, p := range r.Banking.Participations {
			row := *r
			row.Fields = cloneFields(r.Fields)
			row.Fields["Bank"] = p.BankName
			row.Fields["Share"] = p.Share.String()
			row.Fields["Amount"] = p.Amount.String()
			if p.Lead {
				row.Fields["Role"] = "Lead"
			} else {
				row.Fields["Role"] = "Participant"
			}
			out = append(out, row)
		}
	}
	return out
}

// ByEquity explodes the property rows into one row per equity commitment.
func ByEquity(rows []model.JoinedRow) []model.JoinedRow {
	var out []model.JoinedRow
	for i := range rows {
		r := &rows[i]
		if r.Banking == nil {
			continue
		}
		for _, ec := range r.Banking.EquityCommitments {
			row := *r
			row.Fields = cloneFields(r.Fields)
			row.Fields["Partner"] = ec.PartnerName
			row.Fields["Commitment"] = ec.Amount.String()
			row.Fields["Funded"] = ec.Funded.String()
			out = append(out, row)
		}
	}
	return out
}

func cloneFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+4)
	for k, v := range in {
		out[k] = v
	}
	return out
}
