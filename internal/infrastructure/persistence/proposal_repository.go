package persistence

import (
	"context"
	"errors"

	"github.com/cf1/backend/internal/domain/proposal"
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/cf1/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProposalRepository implements proposal.Directory using GORM
type GormProposalRepository struct {
	db *gorm.DB
}

// NewGormProposalRepository creates a new GormProposalRepository
func NewGormProposalRepository(db *gorm.DB) *GormProposalRepository {
	return &GormProposalRepository{db: db}
}

// GetProposal returns one proposal by ID
func (r *GormProposalRepository) GetProposal(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	var row models.ProposalModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Save inserts or updates a proposal
func (r *GormProposalRepository) Save(ctx context.Context, p *proposal.Proposal) error {
	var row models.ProposalModel
	row.FromDomain(p)
	return r.db.WithContext(ctx).Save(&row).Error
}

// ListByStatus returns all proposals in the given status
func (r *GormProposalRepository) ListByStatus(ctx context.Context, status proposal.Status) ([]*proposal.Proposal, error) {
	var rows []models.ProposalModel
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("deadline").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*proposal.Proposal, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}
