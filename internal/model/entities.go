package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bank is a lending institution.
type Bank struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// Participation is one bank's share of a syndicated loan. The bank holding
// the largest share is the lead; the rest are participants.
type Participation struct {
	ID        int64           `json:"id"`
	LoanID    int64           `json:"loan_id"`
	ProjectID int64           `json:"project_id"`
	BankID    int64           `json:"bank_id"`
	BankName  string          `json:"bank_name,omitempty"`
	Share     decimal.Decimal `json:"share"`  // fraction of the loan, 0..1
	Amount    decimal.Decimal `json:"amount"` // dollar exposure
	Lead      bool            `json:"lead,omitempty"`
}

// Covenant is a loan covenant tied to a project.
type Covenant struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	LoanID      int64      `json:"loan_id,omitempty"`
	Description string     `json:"description"`
	TestDate    *time.Time `json:"test_date,omitempty"`
	Satisfied   bool       `json:"satisfied"`
}

// Guarantee is a repayment or completion guarantee on a project.
type Guarantee struct {
	ID        int64           `json:"id"`
	ProjectID int64           `json:"project_id"`
	Guarantor string          `json:"guarantor"`
	Kind      string          `json:"kind,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// Partner is an equity investor.
type Partner struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EquityCommitment is a partner's committed equity in a project.
type EquityCommitment struct {
	ID          int64           `json:"id"`
	ProjectID   int64           `json:"project_id"`
	PartnerID   int64           `json:"partner_id"`
	PartnerName string          `json:"partner_name,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Funded      decimal.Decimal `json:"funded"`
}

// Region is backend reference data.
type Region struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductType is backend reference data.
type ProductType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is the authenticated backend user.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}
