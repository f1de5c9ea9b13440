package proposal

import (
	"testing"
	"time"

	"github.com/cf1/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusSubmitted, false},
		{StatusActive, false},
		{StatusFunded, true},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusRejected, true},
		{StatusWithdrawn, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusActive.IsValid())
	assert.False(t, Status("archived").IsValid())
}

func TestProposal_FundingProgress(t *testing.T) {
	p := &Proposal{
		BaseEntity:     shared.NewBaseEntity(),
		FundingGoal:    decimal.NewFromInt(50000),
		CurrentFunding: decimal.NewFromInt(37500),
	}

	assert.True(t, p.FundingProgress().Equal(decimal.NewFromInt(75)))
}

func TestProposal_FundingProgress_ZeroGoal(t *testing.T) {
	p := &Proposal{FundingGoal: decimal.Zero, CurrentFunding: decimal.NewFromInt(100)}

	assert.True(t, p.FundingProgress().IsZero())
}

func TestProposal_TimeRemaining(t *testing.T) {
	now := time.Now()
	p := &Proposal{Deadline: now.Add(72 * time.Hour)}

	assert.Equal(t, 72*time.Hour, p.TimeRemaining(now))

	past := &Proposal{Deadline: now.Add(-time.Hour)}
	assert.Negative(t, past.TimeRemaining(now))
}

func TestProposal_IsFundable(t *testing.T) {
	p := &Proposal{Status: StatusActive, Deadline: time.Now().Add(time.Hour)}
	assert.True(t, p.IsFundable())

	p.Status = StatusFunded
	assert.False(t, p.IsFundable())

	expired := &Proposal{Status: StatusActive, Deadline: time.Now().Add(-time.Hour)}
	assert.False(t, expired.IsFundable())
}
