package persistence

import (
	"context"
	"encoding/json"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRecipientRepository implements notification.RecipientDirectory by
// joining active users against their investments in the proposal. Commitment
// state is computed per proposal, so the same user can be committed on one
// proposal and potential on another.
type GormRecipientRepository struct {
	db *gorm.DB
}

// NewGormRecipientRepository creates a new GormRecipientRepository
func NewGormRecipientRepository(db *gorm.DB) *GormRecipientRepository {
	return &GormRecipientRepository{db: db}
}

// ListCandidateRecipients returns every active user with their investment
// standing relative to the proposal
func (r *GormRecipientRepository) ListCandidateRecipients(ctx context.Context, proposalID uuid.UUID) ([]notification.Recipient, error) {
	var users []models.UserModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	var investments []models.InvestmentModel
	if err := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).Find(&investments).Error; err != nil {
		return nil, err
	}
	invested := make(map[uuid.UUID]decimal.Decimal, len(investments))
	for _, inv := range investments {
		invested[inv.UserID] = invested[inv.UserID].Add(inv.Amount)
	}

	out := make([]notification.Recipient, 0, len(users))
	for _, u := range users {
		var segments []string
		if u.SegmentsJSON != "" {
			if err := json.Unmarshal([]byte(u.SegmentsJSON), &segments); err != nil {
				return nil, err
			}
		}

		amount, hasInvested := invested[u.ID]
		out = append(out, notification.Recipient{
			ID:             u.ID,
			Email:          u.Email,
			PhoneNumber:    u.PhoneNumber,
			WalletAddress:  u.WalletAddress,
			DisplayName:    u.DisplayName,
			HasInvested:    hasInvested,
			IsAccredited:   u.IsAccredited,
			Segments:       segments,
			InvestedAmount: amount,
		})
	}
	return out, nil
}
