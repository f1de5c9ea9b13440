package notification

import (
	"fmt"
	"time"

	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryStatus is the lifecycle state of a scheduled entry.
// The only transitions are pending -> sent, pending -> failed and
// pending -> cancelled; terminal states never change again.
type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntrySent      EntryStatus = "sent"
	EntryFailed    EntryStatus = "failed"
	EntryCancelled EntryStatus = "cancelled"
)

// ScheduledEntry is one concrete future firing of one trigger for one proposal
type ScheduledEntry struct {
	shared.BaseEntity
	TriggerID    uuid.UUID
	ProposalID   uuid.UUID
	ScheduledFor time.Time
	Status       EntryStatus
	// AttemptCount increments once per channel attempt, not once per recipient
	AttemptCount int
}

// NewScheduledEntry creates a pending entry
func NewScheduledEntry(triggerID, proposalID uuid.UUID, scheduledFor time.Time) *ScheduledEntry {
	return &ScheduledEntry{
		BaseEntity:   shared.NewBaseEntity(),
		TriggerID:    triggerID,
		ProposalID:   proposalID,
		ScheduledFor: scheduledFor,
		Status:       EntryPending,
	}
}

// IsDue returns true if the entry should fire at or before the given instant
func (e *ScheduledEntry) IsDue(now time.Time) bool {
	return e.Status == EntryPending && !e.ScheduledFor.After(now)
}

// MarkSent transitions the entry to sent
func (e *ScheduledEntry) MarkSent() error {
	return e.transition(EntrySent)
}

// MarkFailed transitions the entry to failed
func (e *ScheduledEntry) MarkFailed() error {
	return e.transition(EntryFailed)
}

// Cancel transitions the entry to cancelled. Entries are cancelled, never
// silently dropped, when their proposal goes terminal or their trigger is
// disabled before firing.
func (e *ScheduledEntry) Cancel() error {
	return e.transition(EntryCancelled)
}

func (e *ScheduledEntry) transition(to EntryStatus) error {
	if e.Status != EntryPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Scheduled entry is %s and cannot transition to %s", e.Status, to))
	}
	e.Status = to
	e.Touch()
	return nil
}
