package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityEntry is one row in the rolling scheduler activity feed
type ActivityEntry struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	ProposalID uuid.UUID `json:"proposal_id"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DefaultActivityFeedSize bounds the in-memory activity feed
const DefaultActivityFeedSize = 200

// ActivityFeedHandler consumes scheduler events and keeps a bounded,
// newest-first feed of recent activity for dashboards. It subscribes to
// every notification event type.
type ActivityFeedHandler struct {
	mu      sync.RWMutex
	entries []ActivityEntry
	limit   int
	logger  *zap.Logger
}

// NewActivityFeedHandler creates a feed handler holding at most limit entries
func NewActivityFeedHandler(limit int, logger *zap.Logger) *ActivityFeedHandler {
	if limit <= 0 {
		limit = DefaultActivityFeedSize
	}
	return &ActivityFeedHandler{limit: limit, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ActivityFeedHandler) EventTypes() []string {
	return []string{
		notification.EventEntryFired,
		notification.EventDeliveryRecorded,
		notification.EventScheduleCancelled,
	}
}

// Handle appends the event to the feed, evicting the oldest entry when full
func (h *ActivityFeedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry := ActivityEntry{
		EventID:    event.EventID(),
		EventType:  event.EventType(),
		OccurredAt: event.OccurredAt(),
	}

	switch e := event.(type) {
	case *notification.EntryFiredEvent:
		entry.ProposalID = e.ProposalID
		entry.Detail = string(e.Status)
	case *notification.DeliveryRecordedEvent:
		entry.ProposalID = e.ProposalID
		entry.Detail = string(e.Status)
	case *notification.ScheduleCancelledEvent:
		entry.ProposalID = e.ProposalID
		entry.Detail = "cancelled"
	default:
		h.logger.Debug("unhandled event type in activity feed",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]ActivityEntry{entry}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	return nil
}

// Recent returns up to n feed entries, newest first
func (h *ActivityFeedHandler) Recent(n int) []ActivityEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]ActivityEntry, n)
	copy(out, h.entries[:n])
	return out
}

var _ shared.EventHandler = (*ActivityFeedHandler)(nil)
