// Package client talks to the lending backend's REST API.
package client

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oakmontcap/lendboard/internal/model"
)

// Backend is the surface the board needs from the lending backend.
type Backend interface {
	// Auth
	Login(ctx context.Context, username, password string) (string, error)
	Verify(ctx context.Context, token string) (*model.User, error)

	// Entities
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id int64) (*model.Project, error)
	UpdateProject(ctx context.Context, id int64, req *UpdateProjectRequest) (*model.Project, error)

	ListLoans(ctx context.Context) ([]model.Loan, error)
	// UpdateLoan requires the phase so an update can never cross-write the
	// project's other loan.
	UpdateLoan(ctx context.Context, projectID int64, phase model.LoanPhase, req *UpdateLoanRequest) (*model.Loan, error)

	ListParticipations(ctx context.Context) ([]model.Participation, error)
	UpdateParticipation(ctx context.Context, id int64, req *UpdateParticipationRequest) (*model.Participation, error)

	ListCovenants(ctx context.Context) ([]model.Covenant, error)
	ListGuarantees(ctx context.Context) ([]model.Guarantee, error)

	ListEquityCommitments(ctx context.Context) ([]model.EquityCommitment, error)
	UpdateEquityCommitment(ctx context.Context, id int64, req *UpdateEquityCommitmentRequest) (*model.EquityCommitment, error)

	// Reference data
	ListBanks(ctx context.Context) ([]model.Bank, error)
	ListPartners(ctx context.Context) ([]model.Partner, error)
	ListRegions(ctx context.Context) ([]model.Region, error)
	ListProductTypes(ctx context.Context) ([]model.ProductType, error)

	Close() error
}

// UpdateProjectRequest patches a project; nil fields are left unchanged.
type UpdateProjectRequest struct {
	Name         *string      `json:"name,omitempty"`
	City         *string      `json:"city,omitempty"`
	State        *string      `json:"state,omitempty"`
	Region       *string      `json:"region,omitempty"`
	Units        *int         `json:"units,omitempty"`
	ProductType  *string      `json:"product_type,omitempty"`
	Stage        *model.Stage `json:"stage,omitempty"`
	DealSequence *int         `json:"deal_sequence,omitempty"`
}

// UpdateLoanRequest patches one phase's loan; nil fields are left unchanged.
type UpdateLoanRequest struct {
	LenderID       *int64           `json:"lender_id,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Rate           *string          `json:"rate,omitempty"`
	ClosingDate    *time.Time       `json:"closing_date,omitempty"`
	MaturityDate   *time.Time       `json:"maturity_date,omitempty"`
	IOMaturityDate *time.Time       `json:"io_maturity_date,omitempty"`
}

// UpdateParticipationRequest patches a participation (lead designation,
// share, exposure).
type UpdateParticipationRequest struct {
	Share  *decimal.Decimal `json:"share,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Lead   *bool            `json:"lead,omitempty"`
}

// UpdateEquityCommitmentRequest patches an equity commitment.
type UpdateEquityCommitmentRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Funded *decimal.Decimal `json:"funded,omitempty"`
}
