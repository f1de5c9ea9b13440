package shared

import "context"

// EventHandler reacts to domain events
type EventHandler interface {
	// Handle processes a single domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice subscribes the handler to every event.
	EventTypes() []string
}

// EventPublisher publishes domain events to interested handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler subscriptions
type EventSubscriber interface {
	// Subscribe registers a handler for the given event types.
	// With no event types the handler receives all events.
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes every subscription held by the handler
	Unsubscribe(handler EventHandler)
}

// EventBus combines publishing and subscription with lifecycle control
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
