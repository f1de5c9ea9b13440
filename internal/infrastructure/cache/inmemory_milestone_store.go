package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InMemoryMilestoneStore remembers which milestone triggers already fired
// for a proposal. The idempotency key is (trigger, proposal, threshold), so
// funding oscillating around a threshold can never re-arm a milestone.
type InMemoryMilestoneStore struct {
	mu    sync.Mutex
	fired map[string]struct{}
}

// NewInMemoryMilestoneStore creates an empty milestone store
func NewInMemoryMilestoneStore() *InMemoryMilestoneStore {
	return &InMemoryMilestoneStore{fired: make(map[string]struct{})}
}

// MarkFired records that a milestone fired. The first call for a key
// returns true; every later call returns false.
func (s *InMemoryMilestoneStore) MarkFired(ctx context.Context, triggerID, proposalID uuid.UUID, threshold decimal.Decimal) (bool, error) {
	key := fmt.Sprintf("%s:%s:%s", triggerID, proposalID, threshold.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.fired[key]; exists {
		return false, nil
	}
	s.fired[key] = struct{}{}
	return true, nil
}
