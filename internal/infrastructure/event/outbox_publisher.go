package event

import (
	"context"

	"github.com/cf1/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher persists domain events to the outbox table instead of
// delivering them directly. The outbox processor picks them up and forwards
// them to the event bus, so events survive process restarts.
type OutboxPublisher struct {
	serializer *EventSerializer
	db         *gorm.DB
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer, db *gorm.DB) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: serializer,
		db:         db,
	}
}

// Publish serializes the events and stores them as pending outbox entries
func (p *OutboxPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return p.PublishWithTx(ctx, p.db, events...)
}

// PublishWithTx publishes events to the outbox within the provided transaction.
// This ensures events are persisted atomically with the aggregate changes.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}

		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	repo := NewGormOutboxRepository(tx)
	return repo.Save(ctx, entries...)
}

// Ensure OutboxPublisher implements EventPublisher
var _ shared.EventPublisher = (*OutboxPublisher)(nil)
