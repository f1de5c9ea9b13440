package notification

import (
	"time"

	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliveryStatus is the overall outcome of a delivery attempt
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

// ChannelResult records the outcome of one channel attempt
type ChannelResult struct {
	Channel   Channel   `json:"channel"`
	Success   bool      `json:"success"`
	MessageID string    `json:"message_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliveryRecord is the outcome of attempting to send one scheduled entry
// to one recipient, with one result per attempted channel.
type DeliveryRecord struct {
	shared.BaseEntity
	TriggerID    uuid.UUID
	ProposalID   uuid.UUID
	RecipientID  uuid.UUID
	ScheduledFor time.Time
	SentAt       *time.Time
	Status       DeliveryStatus
	AttemptCount int
	// Results is ordered by the trigger's channel list
	Results []ChannelResult
}

// NewDeliveryRecord creates a pending delivery record
func NewDeliveryRecord(triggerID, proposalID, recipientID uuid.UUID, scheduledFor time.Time) *DeliveryRecord {
	return &DeliveryRecord{
		BaseEntity:   shared.NewBaseEntity(),
		TriggerID:    triggerID,
		ProposalID:   proposalID,
		RecipientID:  recipientID,
		ScheduledFor: scheduledFor,
		Status:       DeliveryPending,
	}
}

// AddResult appends a channel result and counts the attempt
func (d *DeliveryRecord) AddResult(result ChannelResult) {
	d.Results = append(d.Results, result)
	d.AttemptCount++
}

// Finalize settles the overall status once every channel attempt has
// completed. Partial channel failure is not overall failure: the record is
// sent iff at least one channel result succeeded.
func (d *DeliveryRecord) Finalize(now time.Time) {
	if d.AnySucceeded() {
		d.Status = DeliverySent
		sentAt := now
		d.SentAt = &sentAt
	} else {
		d.Status = DeliveryFailed
	}
	d.Touch()
}

// AnySucceeded returns true if at least one channel result succeeded
func (d *DeliveryRecord) AnySucceeded() bool {
	for _, r := range d.Results {
		if r.Success {
			return true
		}
	}
	return false
}
