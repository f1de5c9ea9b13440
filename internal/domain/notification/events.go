package notification

import (
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types published by the notification engine
const (
	EventEntryFired        = "notification.entry.fired"
	EventDeliveryRecorded  = "notification.delivery.recorded"
	EventScheduleCancelled = "notification.schedule.cancelled"
)

// EntryFiredEvent is published after a scheduled entry finishes dispatching
type EntryFiredEvent struct {
	shared.BaseDomainEvent
	TriggerID      uuid.UUID   `json:"trigger_id"`
	ProposalID     uuid.UUID   `json:"proposal_id"`
	Status         EntryStatus `json:"status"`
	RecipientCount int         `json:"recipient_count"`
}

// NewEntryFiredEvent creates an EntryFiredEvent for the given entry
func NewEntryFiredEvent(entry *ScheduledEntry, recipientCount int) *EntryFiredEvent {
	return &EntryFiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventEntryFired, "ScheduledEntry", entry.ID),
		TriggerID:       entry.TriggerID,
		ProposalID:      entry.ProposalID,
		Status:          entry.Status,
		RecipientCount:  recipientCount,
	}
}

// DeliveryRecordedEvent is published for every delivery record appended to
// the ledger; dashboard and websocket consumers subscribe to it.
type DeliveryRecordedEvent struct {
	shared.BaseDomainEvent
	ProposalID  uuid.UUID      `json:"proposal_id"`
	RecipientID uuid.UUID      `json:"recipient_id"`
	Status      DeliveryStatus `json:"status"`
	Channels    int            `json:"channels"`
}

// NewDeliveryRecordedEvent creates a DeliveryRecordedEvent for the record
func NewDeliveryRecordedEvent(record *DeliveryRecord) *DeliveryRecordedEvent {
	return &DeliveryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDeliveryRecorded, "DeliveryRecord", record.ID),
		ProposalID:      record.ProposalID,
		RecipientID:     record.RecipientID,
		Status:          record.Status,
		Channels:        len(record.Results),
	}
}

// ScheduleCancelledEvent is published when a proposal going terminal
// cancels its pending entries
type ScheduleCancelledEvent struct {
	shared.BaseDomainEvent
	ProposalID     uuid.UUID `json:"proposal_id"`
	CancelledCount int       `json:"cancelled_count"`
}

// NewScheduleCancelledEvent creates a ScheduleCancelledEvent
func NewScheduleCancelledEvent(proposalID uuid.UUID, cancelled int) *ScheduleCancelledEvent {
	return &ScheduleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventScheduleCancelled, "Proposal", proposalID),
		ProposalID:      proposalID,
		CancelledCount:  cancelled,
	}
}
