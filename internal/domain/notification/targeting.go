package notification

import (
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Audience selects which recipients qualify for a trigger
type Audience string

const (
	// AudienceAll targets every candidate recipient
	AudienceAll Audience = "all"

	// AudienceCommitted targets recipients who have invested in the proposal
	AudienceCommitted Audience = "committed"

	// AudiencePotential targets recipients who have not invested yet
	AudiencePotential Audience = "potential"

	// AudienceSegments targets recipients belonging to named segments
	AudienceSegments Audience = "specific_segments"
)

// IsValid returns true if the audience is known
func (a Audience) IsValid() bool {
	switch a {
	case AudienceAll, AudienceCommitted, AudiencePotential, AudienceSegments:
		return true
	}
	return false
}

// Targeting is a trigger's recipient selection rule
type Targeting struct {
	Audience Audience
	// Segments is required and non-empty when Audience is specific_segments
	Segments []string
	// MinimumInvestment, when set, excludes recipients whose recorded
	// investment in the proposal is below the floor regardless of
	// audience match
	MinimumInvestment *decimal.Decimal
}

// Validate enforces targeting invariants
func (t Targeting) Validate() error {
	if !t.Audience.IsValid() {
		return shared.NewDomainError("INVALID_TRIGGER", "Unknown targeting audience")
	}
	if t.Audience == AudienceSegments && len(t.Segments) == 0 {
		return shared.NewDomainError("INVALID_TRIGGER", "Segment targeting requires at least one segment")
	}
	if t.MinimumInvestment != nil && t.MinimumInvestment.IsNegative() {
		return shared.NewDomainError("INVALID_TRIGGER", "Minimum investment floor cannot be negative")
	}
	return nil
}

// Matches reports whether the recipient qualifies under this targeting rule.
// It is a pure predicate: identical inputs always produce identical results.
func (t Targeting) Matches(r Recipient) bool {
	if t.MinimumInvestment != nil && r.InvestedAmount.LessThan(*t.MinimumInvestment) {
		return false
	}

	switch t.Audience {
	case AudienceAll:
		return true
	case AudienceCommitted:
		return r.HasInvested
	case AudiencePotential:
		return !r.HasInvested
	case AudienceSegments:
		for _, want := range t.Segments {
			for _, have := range r.Segments {
				if want == have {
					return true
				}
			}
		}
		return false
	}
	return false
}
