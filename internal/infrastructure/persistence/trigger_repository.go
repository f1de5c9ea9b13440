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

// GormTriggerRepository implements notification.TriggerStore using GORM
type GormTriggerRepository struct {
	db *gorm.DB
}

// NewGormTriggerRepository creates a new GormTriggerRepository
func NewGormTriggerRepository(db *gorm.DB) *GormTriggerRepository {
	return &GormTriggerRepository{db: db}
}

// GetEffectiveTriggers resolves the trigger set governing one proposal. The
// most specific layer with at least one enabled trigger wins and replaces
// the broader layers wholesale; layers are never merged.
func (r *GormTriggerRepository) GetEffectiveTriggers(ctx context.Context, proposalID, creatorID uuid.UUID) ([]*notification.Trigger, error) {
	proposalLayer, err := r.enabledLayer(ctx, r.db.WithContext(ctx).
		Where("scope = ? AND proposal_id = ?", notification.ScopeProposal, proposalID))
	if err != nil {
		return nil, err
	}
	if len(proposalLayer) > 0 {
		return proposalLayer, nil
	}

	creatorLayer, err := r.enabledLayer(ctx, r.db.WithContext(ctx).
		Where("scope = ? AND creator_id = ?", notification.ScopeCreator, creatorID))
	if err != nil {
		return nil, err
	}
	if len(creatorLayer) > 0 {
		return creatorLayer, nil
	}

	return r.enabledLayer(ctx, r.db.WithContext(ctx).
		Where("scope = ?", notification.ScopePlatform))
}

func (r *GormTriggerRepository) enabledLayer(ctx context.Context, query *gorm.DB) ([]*notification.Trigger, error) {
	var rows []models.TriggerModel
	if err := query.Where("enabled = ?", true).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTriggers(rows)
}

// FindByID returns a trigger regardless of scope
func (r *GormTriggerRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Trigger, error) {
	var row models.TriggerModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain()
}

// List returns all triggers in a scope, enabled or not. Creator and
// proposal scopes filter by owner when ownerID is non-nil.
func (r *GormTriggerRepository) List(ctx context.Context, scope notification.TriggerScope, ownerID *uuid.UUID) ([]*notification.Trigger, error) {
	query := r.db.WithContext(ctx).Where("scope = ?", scope)
	if ownerID != nil {
		switch scope {
		case notification.ScopeCreator:
			query = query.Where("creator_id = ?", *ownerID)
		case notification.ScopeProposal:
			query = query.Where("proposal_id = ?", *ownerID)
		}
	}

	var rows []models.TriggerModel
	if err := query.Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTriggers(rows)
}

// Save inserts or updates a trigger after validating it
func (r *GormTriggerRepository) Save(ctx context.Context, t *notification.Trigger) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var row models.TriggerModel
	if err := row.FromDomain(t); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

// Delete removes a creator or proposal override. Platform defaults are
// never hard-deleted; disable them instead.
func (r *GormTriggerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var row models.TriggerModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if row.Scope == notification.ScopePlatform {
		return shared.ErrProtectedResource
	}
	return r.db.WithContext(ctx).Delete(&models.TriggerModel{}, "id = ?", id).Error
}

func toDomainTriggers(rows []models.TriggerModel) ([]*notification.Trigger, error) {
	out := make([]*notification.Trigger, 0, len(rows))
	for i := range rows {
		t, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
