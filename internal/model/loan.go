package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanPhase discriminates the two loans a project may carry. A project has at
// most one loan per phase, and every loan update must name the phase
// explicitly so the wrong loan is never written.
type LoanPhase string

const (
	PhaseConstruction LoanPhase = "construction"
	PhasePermanent    LoanPhase = "permanent"
)

// String returns the string representation of the phase.
func (p LoanPhase) String() string {
	return string(p)
}

// IsValid checks whether the phase is a known value.
func (p LoanPhase) IsValid() bool {
	switch p {
	case PhaseConstruction, PhasePermanent:
		return true
	}
	return false
}

// Loan belongs to exactly one project and one phase.
type Loan struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	Phase      LoanPhase `json:"phase"`
	LenderID   int64     `json:"lender_id,omitempty"`
	LenderName string    `json:"lender_name,omitempty"`

	Amount decimal.Decimal `json:"amount"`
	// Rate is free text on purpose: the backend stores both bare numbers and
	// spreads like "SOFR + 2.35%".
	Rate string `json:"rate,omitempty"`

	ClosingDate  *time.Time `json:"closing_date,omitempty"`
	MaturityDate *time.Time `json:"maturity_date,omitempty"`
	// IOMaturityDate is the interest-only maturity; only construction loans
	// carry one.
	IOMaturityDate *time.Time `json:"io_maturity_date,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
