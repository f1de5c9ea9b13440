package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	appnotification "github.com/cf1/backend/internal/application/notification"
	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InboxMessage is one notification as it appears in a recipient's in-app inbox
type InboxMessage struct {
	ID          uuid.UUID            `json:"id"`
	RecipientID uuid.UUID            `json:"recipient_id"`
	ProposalID  uuid.UUID            `json:"proposal_id"`
	Subject     string               `json:"subject"`
	Body        string               `json:"body"`
	Urgency     notification.Urgency `json:"urgency"`
	Read        bool                 `json:"read"`
	CreatedAt   time.Time            `json:"created_at"`
}

// InboxStore holds in-app notifications per recipient
type InboxStore interface {
	// Put stores one inbox message
	Put(ctx context.Context, msg InboxMessage) error
	// ListByRecipient returns a recipient's messages, newest first
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]InboxMessage, error)
	// MarkRead flags one message as read; unknown IDs are a no-op
	MarkRead(ctx context.Context, recipientID, messageID uuid.UUID) error
	// UnreadCount returns the number of unread messages for a recipient
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// InMemoryInbox implements InboxStore with a mutex-guarded map
type InMemoryInbox struct {
	mu    sync.RWMutex
	byRec map[uuid.UUID][]InboxMessage
}

// NewInMemoryInbox creates an empty inbox store
func NewInMemoryInbox() *InMemoryInbox {
	return &InMemoryInbox{byRec: make(map[uuid.UUID][]InboxMessage)}
}

func (s *InMemoryInbox) Put(ctx context.Context, msg InboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRec[msg.RecipientID] = append(s.byRec[msg.RecipientID], msg)
	return nil
}

func (s *InMemoryInbox) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]InboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.byRec[recipientID]
	out := make([]InboxMessage, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryInbox) MarkRead(ctx context.Context, recipientID, messageID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.byRec[recipientID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Read = true
			return nil
		}
	}
	return nil
}

func (s *InMemoryInbox) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, msg := range s.byRec[recipientID] {
		if !msg.Read {
			count++
		}
	}
	return count, nil
}

// InAppTransport writes to the recipient's inbox and, when a Redis client is
// configured, publishes the message on a per-recipient channel so connected
// frontends receive it live. Inbox persistence decides success; the pub/sub
// announcement is best effort.
type InAppTransport struct {
	inbox  InboxStore
	redis  *redis.Client
	logger *zap.Logger
	nowFn  func() time.Time
}

// NewInAppTransport creates an in-app transport; redisClient may be nil
func NewInAppTransport(inbox InboxStore, redisClient *redis.Client, logger *zap.Logger) *InAppTransport {
	return &InAppTransport{
		inbox:  inbox,
		redis:  redisClient,
		logger: logger,
		nowFn:  time.Now,
	}
}

// Channel returns the channel this transport serves
func (t *InAppTransport) Channel() notification.Channel {
	return notification.ChannelInApp
}

// LiveChannelName is the Redis pub/sub channel for one recipient's live
// notification feed
func LiveChannelName(recipientID uuid.UUID) string {
	return fmt.Sprintf("cf1:notifications:%s", recipientID.String())
}

// Send stores the message in the recipient's inbox
func (t *InAppTransport) Send(ctx context.Context, msg appnotification.Message) (string, error) {
	inboxMsg := InboxMessage{
		ID:          uuid.New(),
		RecipientID: msg.Recipient.ID,
		ProposalID:  msg.ProposalID,
		Subject:     msg.Subject,
		Body:        msg.Body,
		Urgency:     msg.Urgency,
		CreatedAt:   t.nowFn(),
	}

	if err := t.inbox.Put(ctx, inboxMsg); err != nil {
		return "", fmt.Errorf("inbox store: %w", err)
	}

	t.announce(ctx, inboxMsg)

	return inboxMsg.ID.String(), nil
}

// announce pushes the message over pub/sub; failures only log
func (t *InAppTransport) announce(ctx context.Context, msg InboxMessage) {
	if t.redis == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		t.logger.Warn("Failed to encode live notification", zap.Error(err))
		return
	}
	if err := t.redis.Publish(ctx, LiveChannelName(msg.RecipientID), payload).Err(); err != nil {
		t.logger.Warn("Failed to publish live notification",
			zap.String("recipient_id", msg.RecipientID.String()),
			zap.Error(err),
		)
	}
}
