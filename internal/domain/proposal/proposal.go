package proposal

import (
	"context"
	"time"

	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a funding proposal
type Status string

const (
	// StatusSubmitted means the proposal is awaiting platform review
	StatusSubmitted Status = "submitted"

	// StatusActive means the proposal is accepting investments
	StatusActive Status = "active"

	// StatusFunded means the funding goal was reached before the deadline
	StatusFunded Status = "funded"

	// StatusCompleted means tokens were minted and distributed to investors
	StatusCompleted Status = "completed"

	// StatusFailed means the deadline passed without reaching the goal
	StatusFailed Status = "failed"

	// StatusRejected means the proposal was rejected during review
	StatusRejected Status = "rejected"

	// StatusWithdrawn means the creator withdrew the proposal
	StatusWithdrawn Status = "withdrawn"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known lifecycle state
func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusActive, StatusFunded, StatusCompleted,
		StatusFailed, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// IsTerminal returns true if the proposal can no longer accept investments.
// Pending reminder schedules must be cancelled once a proposal goes terminal.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFunded, StatusCompleted, StatusFailed, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Proposal is the funding proposal read model consumed by the
// auto-communication engine. The launchpad owns the full aggregate; the
// engine only needs the fields that drive scheduling and rendering.
type Proposal struct {
	shared.BaseEntity
	Title             string
	Description       string
	AssetType         string
	CreatorID         uuid.UUID
	CreatorName       string
	FundingGoal       decimal.Decimal
	CurrentFunding    decimal.Decimal
	MinimumInvestment decimal.Decimal
	Deadline          time.Time
	Status            Status
}

// FundingProgress returns the percentage of the funding goal raised so far.
// A zero goal yields zero progress rather than a division error.
func (p *Proposal) FundingProgress() decimal.Decimal {
	if p.FundingGoal.IsZero() {
		return decimal.Zero
	}
	return p.CurrentFunding.Div(p.FundingGoal).Mul(decimal.NewFromInt(100))
}

// IsFundable returns true if the proposal is still accepting investments
func (p *Proposal) IsFundable() bool {
	return p.Status == StatusActive && time.Now().Before(p.Deadline)
}

// TimeRemaining returns the duration until the funding deadline.
// Negative values mean the deadline has passed.
func (p *Proposal) TimeRemaining(now time.Time) time.Duration {
	return p.Deadline.Sub(now)
}

// Directory looks up proposals for the notification engine
type Directory interface {
	// GetProposal returns the proposal with the given ID
	GetProposal(ctx context.Context, id uuid.UUID) (*Proposal, error)
}
