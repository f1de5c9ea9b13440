package event

import (
	"github.com/cf1/backend/internal/domain/notification"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(notification.EventEntryFired, &notification.EntryFiredEvent{})
	serializer.Register(notification.EventDeliveryRecorded, &notification.DeliveryRecordedEvent{})
	serializer.Register(notification.EventScheduleCancelled, &notification.ScheduleCancelledEvent{})
}
