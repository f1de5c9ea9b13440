package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InMemoryDeliveryLedger implements notification.DeliveryLedger in process
// memory. This is the reference configuration; the durable GORM ledger can
// be swapped in without changing any scheduling logic.
type InMemoryDeliveryLedger struct {
	mu      sync.RWMutex
	records []*notification.DeliveryRecord
	byID    map[uuid.UUID]*notification.DeliveryRecord
}

// NewInMemoryDeliveryLedger creates an empty ledger
func NewInMemoryDeliveryLedger() *InMemoryDeliveryLedger {
	return &InMemoryDeliveryLedger{
		byID: make(map[uuid.UUID]*notification.DeliveryRecord),
	}
}

// Append records a completed delivery attempt
func (l *InMemoryDeliveryLedger) Append(ctx context.Context, record *notification.DeliveryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	l.byID[record.ID] = record
	return nil
}

// FindByID returns a single delivery record
func (l *InMemoryDeliveryLedger) FindByID(ctx context.Context, id uuid.UUID) (*notification.DeliveryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return record, nil
}

// FindByProposal returns the delivery history for one proposal, newest first
func (l *InMemoryDeliveryLedger) FindByProposal(ctx context.Context, proposalID uuid.UUID) ([]*notification.DeliveryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*notification.DeliveryRecord
	for _, r := range l.records {
		if r.ProposalID == proposalID {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// FindAll returns the full delivery history, newest first
func (l *InMemoryDeliveryLedger) FindAll(ctx context.Context) ([]*notification.DeliveryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*notification.DeliveryRecord, len(l.records))
	copy(out, l.records)
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(records []*notification.DeliveryRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
