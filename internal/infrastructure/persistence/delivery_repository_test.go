package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentRecord(proposalID uuid.UUID, createdAt time.Time) *notification.DeliveryRecord {
	record := notification.NewDeliveryRecord(uuid.New(), proposalID, uuid.New(), createdAt)
	record.CreatedAt = createdAt
	record.UpdatedAt = createdAt
	record.AddResult(notification.ChannelResult{
		Channel:   notification.ChannelEmail,
		Success:   true,
		MessageID: "email-abc",
		Timestamp: createdAt,
	})
	record.Finalize(createdAt)
	return record
}

func TestGormDeliveryRepository_AppendAndFindByID(t *testing.T) {
	db := setupNotificationTestDB(t)
	repo := NewGormDeliveryRepository(db)
	ctx := context.Background()

	scheduledFor := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	record := notification.NewDeliveryRecord(uuid.New(), uuid.New(), uuid.New(), scheduledFor)
	record.AddResult(notification.ChannelResult{
		Channel:   notification.ChannelEmail,
		Success:   true,
		MessageID: "email-123",
		Timestamp: scheduledFor,
	})
	record.AddResult(notification.ChannelResult{
		Channel: notification.ChannelSMS,
		Success: false,
		Error:   "No phone number available",
	})
	record.Finalize(scheduledFor)
	require.NoError(t, repo.Append(ctx, record))

	got, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.TriggerID, got.TriggerID)
	assert.Equal(t, record.RecipientID, got.RecipientID)
	assert.Equal(t, notification.DeliverySent, got.Status)
	assert.Equal(t, 2, got.AttemptCount)
	require.NotNil(t, got.SentAt)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "email-123", got.Results[0].MessageID)
	assert.Equal(t, "No phone number available", got.Results[1].Error)
}

func TestGormDeliveryRepository_FindByIDNotFound(t *testing.T) {
	db := setupNotificationTestDB(t)
	repo := NewGormDeliveryRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormDeliveryRepository_FindByProposalNewestFirst(t *testing.T) {
	db := setupNotificationTestDB(t)
	repo := NewGormDeliveryRepository(db)
	ctx := context.Background()

	proposalID := uuid.New()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	oldest := sentRecord(proposalID, base)
	newest := sentRecord(proposalID, base.Add(2*time.Hour))
	middle := sentRecord(proposalID, base.Add(time.Hour))
	unrelated := sentRecord(uuid.New(), base.Add(3*time.Hour))
	for _, r := range []*notification.DeliveryRecord{oldest, newest, middle, unrelated} {
		require.NoError(t, repo.Append(ctx, r))
	}

	history, err := repo.FindByProposal(ctx, proposalID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, newest.ID, history[0].ID)
	assert.Equal(t, middle.ID, history[1].ID)
	assert.Equal(t, oldest.ID, history[2].ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, unrelated.ID, all[0].ID)
}
