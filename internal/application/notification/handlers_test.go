package notification

import (
	"context"
	"testing"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestActivityFeedHandler_EventTypes(t *testing.T) {
	h := NewActivityFeedHandler(10, zap.NewNop())

	types := h.EventTypes()

	assert.Contains(t, types, notification.EventEntryFired)
	assert.Contains(t, types, notification.EventDeliveryRecorded)
	assert.Contains(t, types, notification.EventScheduleCancelled)
}

func TestActivityFeedHandler_RecordsNewestFirst(t *testing.T) {
	h := NewActivityFeedHandler(10, zap.NewNop())
	ctx := context.Background()

	first := notification.NewScheduleCancelledEvent(uuid.New(), 1)
	second := notification.NewScheduleCancelledEvent(uuid.New(), 2)

	require.NoError(t, h.Handle(ctx, first))
	require.NoError(t, h.Handle(ctx, second))

	entries := h.Recent(0)
	require.Len(t, entries, 2)
	assert.Equal(t, second.EventID(), entries[0].EventID)
	assert.Equal(t, first.EventID(), entries[1].EventID)
	assert.Equal(t, notification.EventScheduleCancelled, entries[0].EventType)
}

func TestActivityFeedHandler_EvictsOldestWhenFull(t *testing.T) {
	h := NewActivityFeedHandler(3, zap.NewNop())
	ctx := context.Background()

	var last *notification.ScheduleCancelledEvent
	for i := 0; i < 5; i++ {
		last = notification.NewScheduleCancelledEvent(uuid.New(), i)
		require.NoError(t, h.Handle(ctx, last))
	}

	entries := h.Recent(0)
	require.Len(t, entries, 3)
	assert.Equal(t, last.EventID(), entries[0].EventID)
}

func TestActivityFeedHandler_RecentLimitsResult(t *testing.T) {
	h := NewActivityFeedHandler(10, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, h.Handle(ctx, notification.NewScheduleCancelledEvent(uuid.New(), i)))
	}

	assert.Len(t, h.Recent(2), 2)
	assert.Len(t, h.Recent(100), 4)
}

func TestActivityFeedHandler_DeliveryEventCarriesStatus(t *testing.T) {
	h := NewActivityFeedHandler(10, zap.NewNop())
	ctx := context.Background()

	record := notification.NewDeliveryRecord(uuid.New(), uuid.New(), uuid.New(), time.Now())
	record.Results = append(record.Results, notification.ChannelResult{
		Channel: notification.ChannelEmail,
		Success: true,
	})
	record.Finalize(time.Now())

	require.NoError(t, h.Handle(ctx, notification.NewDeliveryRecordedEvent(record)))

	entries := h.Recent(1)
	require.Len(t, entries, 1)
	assert.Equal(t, record.ProposalID, entries[0].ProposalID)
	assert.Equal(t, string(record.Status), entries[0].Detail)
}
