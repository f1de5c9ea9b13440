package notification

import (
	"time"

	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TriggerKind determines what causes a trigger to fire
type TriggerKind string

const (
	// TriggerTimeBased fires at a fixed offset before the funding deadline
	TriggerTimeBased TriggerKind = "time_based"

	// TriggerMilestoneBased fires when funding progress crosses a threshold
	TriggerMilestoneBased TriggerKind = "milestone_based"

	// TriggerCustom is reserved for manually driven sends; it never
	// produces scheduled fire times on its own
	TriggerCustom TriggerKind = "custom"
)

// IsValid returns true if the kind is known
func (k TriggerKind) IsValid() bool {
	switch k {
	case TriggerTimeBased, TriggerMilestoneBased, TriggerCustom:
		return true
	}
	return false
}

// OffsetUnit is the unit of a deadline offset
type OffsetUnit string

const (
	OffsetHours OffsetUnit = "hour"
	OffsetDays  OffsetUnit = "day"
	OffsetWeeks OffsetUnit = "week"
)

// IsValid returns true if the unit is supported
func (u OffsetUnit) IsValid() bool {
	switch u {
	case OffsetHours, OffsetDays, OffsetWeeks:
		return true
	}
	return false
}

// Offset is a duration measured before the funding deadline.
// Only hour/day/week units are supported, so conversion is exact
// integer arithmetic with no calendar ambiguity.
type Offset struct {
	Value int
	Unit  OffsetUnit
}

// Duration converts the offset to a time.Duration
func (o Offset) Duration() time.Duration {
	switch o.Unit {
	case OffsetHours:
		return time.Duration(o.Value) * time.Hour
	case OffsetDays:
		return time.Duration(o.Value) * 24 * time.Hour
	case OffsetWeeks:
		return time.Duration(o.Value) * 7 * 24 * time.Hour
	}
	return 0
}

// IntervalUnit is the unit of a recurring reminder interval
type IntervalUnit string

const (
	IntervalHours IntervalUnit = "hour"
	IntervalDays  IntervalUnit = "day"
)

// IsValid returns true if the unit is supported
func (u IntervalUnit) IsValid() bool {
	return u == IntervalHours || u == IntervalDays
}

// Interval is the spacing between recurring reminders
type Interval struct {
	Value int
	Unit  IntervalUnit
}

// Duration converts the interval to a time.Duration
func (i Interval) Duration() time.Duration {
	switch i.Unit {
	case IntervalHours:
		return time.Duration(i.Value) * time.Hour
	case IntervalDays:
		return time.Duration(i.Value) * 24 * time.Hour
	}
	return 0
}

// FrequencyType distinguishes one-shot from recurring reminders
type FrequencyType string

const (
	FrequencyOnce      FrequencyType = "once"
	FrequencyRecurring FrequencyType = "recurring"
)

// Frequency describes how often a time-based trigger fires
type Frequency struct {
	Type FrequencyType
	// Interval is required when Type is recurring
	Interval *Interval
	// MaxReminders caps the number of recurring reminders; must be >= 1
	// when Type is recurring
	MaxReminders int
}

// Channel is a delivery medium
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in_app"
	ChannelSMS   Channel = "sms"
)

// IsValid returns true if the channel is supported
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelInApp, ChannelSMS:
		return true
	}
	return false
}

// Urgency is the message urgency level
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// IsValid returns true if the urgency level is known
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// MessageTemplate is the message content of a trigger. Subject and body may
// contain {{placeholder}} tokens substituted at dispatch time.
type MessageTemplate struct {
	Subject  string
	Body     string
	Channels []Channel // ordered; dispatch attempts follow this order
	Urgency  Urgency
}

// HasChannel returns true if the template includes the given channel
func (t MessageTemplate) HasChannel(c Channel) bool {
	for _, ch := range t.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// TriggerScope identifies which configuration layer owns a trigger.
// The most specific layer with enabled triggers wins wholesale; there is
// no field-level merge between layers.
type TriggerScope string

const (
	// ScopePlatform is the platform-wide default layer
	ScopePlatform TriggerScope = "platform"

	// ScopeCreator overrides platform defaults for all of a creator's proposals
	ScopeCreator TriggerScope = "creator"

	// ScopeProposal overrides everything for a single proposal
	ScopeProposal TriggerScope = "proposal"
)

// IsValid returns true if the scope is known
func (s TriggerScope) IsValid() bool {
	switch s {
	case ScopePlatform, ScopeCreator, ScopeProposal:
		return true
	}
	return false
}

// Trigger is a named rule describing when and how a reminder fires
type Trigger struct {
	shared.BaseEntity
	Name    string
	Kind    TriggerKind
	Enabled bool
	Scope   TriggerScope

	// CreatorID is set for creator-scoped triggers
	CreatorID *uuid.UUID
	// ProposalID is set for proposal-scoped triggers
	ProposalID *uuid.UUID

	// Offset is required for time_based triggers
	Offset *Offset
	// Frequency applies to time_based triggers
	Frequency Frequency

	// MilestoneThreshold is the funding-progress percentage that arms a
	// milestone_based trigger; required for that kind
	MilestoneThreshold *decimal.Decimal

	Template  MessageTemplate
	Targeting Targeting
}

// NewTrigger creates a platform-scoped trigger with a generated ID
func NewTrigger(name string, kind TriggerKind) *Trigger {
	return &Trigger{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Kind:       kind,
		Scope:      ScopePlatform,
		Enabled:    true,
		Frequency:  Frequency{Type: FrequencyOnce},
	}
}

// Validate enforces trigger invariants. Configuration errors surface here,
// at save time, and never reach the scheduler.
func (t *Trigger) Validate() error {
	if t.Name == "" {
		return shared.NewDomainError("INVALID_TRIGGER", "Trigger name cannot be empty")
	}
	if !t.Kind.IsValid() {
		return shared.NewDomainError("INVALID_TRIGGER", "Unknown trigger kind")
	}
	if !t.Scope.IsValid() {
		return shared.NewDomainError("INVALID_TRIGGER", "Unknown trigger scope")
	}
	if t.Scope == ScopeCreator && t.CreatorID == nil {
		return shared.NewDomainError("INVALID_TRIGGER", "Creator-scoped trigger requires a creator ID")
	}
	if t.Scope == ScopeProposal && t.ProposalID == nil {
		return shared.NewDomainError("INVALID_TRIGGER", "Proposal-scoped trigger requires a proposal ID")
	}

	if t.Kind == TriggerTimeBased {
		if t.Offset == nil {
			return shared.NewDomainError("INVALID_TRIGGER", "Time-based trigger requires an offset")
		}
		if t.Offset.Value <= 0 || !t.Offset.Unit.IsValid() {
			return shared.NewDomainError("INVALID_TRIGGER", "Trigger offset must be positive with a supported unit")
		}
	}
	if t.Frequency.Type == FrequencyRecurring {
		if t.Frequency.Interval == nil {
			return shared.NewDomainError("INVALID_TRIGGER", "Recurring trigger requires an interval")
		}
		if t.Frequency.Interval.Value <= 0 || !t.Frequency.Interval.Unit.IsValid() {
			return shared.NewDomainError("INVALID_TRIGGER", "Trigger interval must be positive with a supported unit")
		}
		if t.Frequency.MaxReminders < 1 {
			return shared.NewDomainError("INVALID_TRIGGER", "Recurring trigger requires a reminder cap of at least 1")
		}
	}
	if t.Kind == TriggerMilestoneBased {
		if t.MilestoneThreshold == nil || t.MilestoneThreshold.IsNegative() || t.MilestoneThreshold.IsZero() {
			return shared.NewDomainError("INVALID_TRIGGER", "Milestone trigger requires a positive funding threshold")
		}
	}

	if t.Enabled && len(t.Template.Channels) == 0 {
		return shared.NewDomainError("INVALID_TRIGGER", "Enabled trigger requires at least one channel")
	}
	for _, c := range t.Template.Channels {
		if !c.IsValid() {
			return shared.NewDomainError("INVALID_TRIGGER", "Unknown delivery channel")
		}
	}
	if t.Template.Urgency != "" && !t.Template.Urgency.IsValid() {
		return shared.NewDomainError("INVALID_TRIGGER", "Unknown urgency level")
	}

	return t.Targeting.Validate()
}

// Enable marks the trigger as active
func (t *Trigger) Enable() {
	t.Enabled = true
	t.Touch()
}

// Disable marks the trigger as inactive. Entries already scheduled from it
// are cancelled at fire time, not dispatched.
func (t *Trigger) Disable() {
	t.Enabled = false
	t.Touch()
}
