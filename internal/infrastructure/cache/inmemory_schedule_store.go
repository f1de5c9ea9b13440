package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// InMemoryScheduleStore implements notification.ScheduleStore with a
// mutex-guarded map. Suitable for single-instance deployments and tests;
// pending entries do not survive a restart.
type InMemoryScheduleStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*notification.ScheduledEntry
	claims  map[uuid.UUID]struct{}
}

// NewInMemoryScheduleStore creates an empty schedule store
func NewInMemoryScheduleStore() *InMemoryScheduleStore {
	return &InMemoryScheduleStore{
		entries: make(map[uuid.UUID]*notification.ScheduledEntry),
		claims:  make(map[uuid.UUID]struct{}),
	}
}

// Append adds entries to the pending set
func (s *InMemoryScheduleStore) Append(ctx context.Context, entries ...*notification.ScheduledEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return nil
}

// ClaimDue returns every pending entry due at or before now. Claimed
// entries stay stored for status updates but are flagged so a later claim
// can never return them again.
func (s *InMemoryScheduleStore) ClaimDue(ctx context.Context, now time.Time) ([]*notification.ScheduledEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*notification.ScheduledEntry
	for _, e := range s.entries {
		if _, taken := s.claims[e.ID]; taken {
			continue
		}
		if e.IsDue(now) {
			s.claims[e.ID] = struct{}{}
			due = append(due, e)
		}
	}
	return due, nil
}

// Update persists an entry's post-dispatch state
func (s *InMemoryScheduleStore) Update(ctx context.Context, entry *notification.ScheduledEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return nil
}

// CancelPending marks every pending entry for the proposal as cancelled.
// Sent and failed entries are untouched; entries already claimed by an
// in-flight tick settle through the tick handler instead.
func (s *InMemoryScheduleStore) CancelPending(ctx context.Context, proposalID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := 0
	for _, e := range s.entries {
		if e.ProposalID != proposalID || e.Status != notification.EntryPending {
			continue
		}
		if _, taken := s.claims[e.ID]; taken {
			continue
		}
		if err := e.Cancel(); err != nil {
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// CountPending returns the number of unclaimed pending entries
func (s *InMemoryScheduleStore) CountPending(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if _, taken := s.claims[e.ID]; taken {
			continue
		}
		if e.Status == notification.EntryPending {
			count++
		}
	}
	return count, nil
}

// FindByProposal returns all entries for a proposal, any status, ordered by
// scheduled time
func (s *InMemoryScheduleStore) FindByProposal(ctx context.Context, proposalID uuid.UUID) ([]*notification.ScheduledEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*notification.ScheduledEntry
	for _, e := range s.entries {
		if e.ProposalID == proposalID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	return out, nil
}
