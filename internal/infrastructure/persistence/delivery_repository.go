package persistence

import (
	"context"
	"errors"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/cf1/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeliveryRepository implements notification.DeliveryLedger using GORM.
// It is the durable alternative to the in-memory ledger for deployments
// that need delivery history to survive restarts.
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GormDeliveryRepository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Append records a completed delivery attempt
func (r *GormDeliveryRepository) Append(ctx context.Context, record *notification.DeliveryRecord) error {
	var row models.DeliveryRecordModel
	if err := row.FromDomain(record); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// FindByID returns a single delivery record
func (r *GormDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.DeliveryRecord, error) {
	var row models.DeliveryRecordModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain()
}

// FindByProposal returns the delivery history for one proposal, newest first
func (r *GormDeliveryRepository) FindByProposal(ctx context.Context, proposalID uuid.UUID) ([]*notification.DeliveryRecord, error) {
	var rows []models.DeliveryRecordModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainDeliveries(rows)
}

// FindAll returns the full delivery history, newest first
func (r *GormDeliveryRepository) FindAll(ctx context.Context) ([]*notification.DeliveryRecord, error) {
	var rows []models.DeliveryRecordModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainDeliveries(rows)
}

func toDomainDeliveries(rows []models.DeliveryRecordModel) ([]*notification.DeliveryRecord, error) {
	out := make([]*notification.DeliveryRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}
