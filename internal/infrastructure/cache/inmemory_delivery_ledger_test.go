package cache

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

func TestInMemoryDeliveryLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewInMemoryDeliveryLedger()
	proposalID := uuid.New()

	older := notification.NewDeliveryRecord(uuid.New(), proposalID, uuid.New(), time.Now())
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := notification.NewDeliveryRecord(uuid.New(), proposalID, uuid.New(), time.Now())
	unrelated := notification.NewDeliveryRecord(uuid.New(), uuid.New(), uuid.New(), time.Now())

	require.NoError(t, ledger.Append(ctx, older))
	require.NoError(t, ledger.Append(ctx, newer))
	require.NoError(t, ledger.Append(ctx, unrelated))

	t.Run("find by id", func(t *testing.T) {
		found, err := ledger.FindByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, older.ID, found.ID)

		_, err = ledger.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find by proposal newest first", func(t *testing.T) {
		records, err := ledger.FindByProposal(ctx, proposalID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, newer.ID, records[0].ID)
		assert.Equal(t, older.ID, records[1].ID)
	})

	t.Run("find all", func(t *testing.T) {
		records, err := ledger.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})
}
