package model

import "time"

// Stage represents the lifecycle stage of a project.
type Stage string

const (
	StageProspective       Stage = "Prospective"
	StageUnderContract     Stage = "Under Contract"
	StageUnderConstruction Stage = "Under Construction"
	StageLeaseUp           Stage = "Lease-Up"
	StageStabilized        Stage = "Stabilized"
	StageLiquidated        Stage = "Liquidated"
	StageOther             Stage = "Other"
	StageDead              Stage = "Dead"
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid checks whether the stage is a known value.
func (s Stage) IsValid() bool {
	switch s {
	case StageProspective, StageUnderContract, StageUnderConstruction,
		StageLeaseUp, StageStabilized, StageLiquidated, StageOther, StageDead:
		return true
	}
	return false
}

// Project is a piece of real estate tracked by the backend. Projects are
// created by the backing store; this service only reads and patches them.
type Project struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	City         string     `json:"city,omitempty"`
	State        string     `json:"state,omitempty"`
	Region       string     `json:"region,omitempty"`
	Units        int        `json:"units,omitempty"`
	ProductType  string     `json:"product_type,omitempty"`
	Stage        Stage      `json:"stage"`
	DealSequence *int       `json:"deal_sequence,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}
