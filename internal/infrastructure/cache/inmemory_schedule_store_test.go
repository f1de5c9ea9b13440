package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryScheduleStore_ClaimDue(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryScheduleStore()
	now := time.Now()

	due := notification.NewScheduledEntry(uuid.New(), uuid.New(), now.Add(-time.Minute))
	future := notification.NewScheduledEntry(uuid.New(), uuid.New(), now.Add(time.Hour))
	require.NoError(t, store.Append(ctx, due, future))

	claimed, err := store.ClaimDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, due.ID, claimed[0].ID)

	// An entry claimed once is never returned again.
	again, err := store.ClaimDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestInMemoryScheduleStore_CancelPending(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryScheduleStore()
	now := time.Now()
	proposalID := uuid.New()

	pending1 := notification.NewScheduledEntry(uuid.New(), proposalID, now.Add(time.Hour))
	pending2 := notification.NewScheduledEntry(uuid.New(), proposalID, now.Add(2*time.Hour))
	otherProposal := notification.NewScheduledEntry(uuid.New(), uuid.New(), now.Add(time.Hour))
	settled := notification.NewScheduledEntry(uuid.New(), proposalID, now.Add(-time.Hour))
	require.NoError(t, settled.MarkSent())
	require.NoError(t, store.Append(ctx, pending1, pending2, otherProposal, settled))

	cancelled, err := store.CancelPending(ctx, proposalID)
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)

	assert.Equal(t, notification.EntryCancelled, pending1.Status)
	assert.Equal(t, notification.EntryCancelled, pending2.Status)
	// Entries of other proposals and already-settled entries are untouched.
	assert.Equal(t, notification.EntryPending, otherProposal.Status)
	assert.Equal(t, notification.EntrySent, settled.Status)
}

func TestInMemoryScheduleStore_CountPending(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryScheduleStore()
	now := time.Now()

	require.NoError(t, store.Append(ctx,
		notification.NewScheduledEntry(uuid.New(), uuid.New(), now.Add(time.Hour)),
		notification.NewScheduledEntry(uuid.New(), uuid.New(), now.Add(-time.Hour)),
	))

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = store.ClaimDue(ctx, now)
	require.NoError(t, err)

	count, err = store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInMemoryScheduleStore_FindByProposal(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryScheduleStore()
	proposalID := uuid.New()

	mine := notification.NewScheduledEntry(uuid.New(), proposalID, time.Now())
	other := notification.NewScheduledEntry(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, store.Append(ctx, mine, other))

	found, err := store.FindByProposal(ctx, proposalID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, mine.ID, found[0].ID)
}
