package models

import (
	"time"

	"github.com/cf1/backend/internal/domain/proposal"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProposalModel is the persistence model for investment proposals
type ProposalModel struct {
	BaseModel
	Title             string          `gorm:"type:varchar(300);not null"`
	Description       string          `gorm:"type:text"`
	AssetType         string          `gorm:"type:varchar(100);not null"`
	CreatorID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatorName       string          `gorm:"type:varchar(200);not null"`
	FundingGoal       decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CurrentFunding    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	MinimumInvestment decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Deadline          time.Time       `gorm:"not null;index"`
	Status            proposal.Status `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (ProposalModel) TableName() string {
	return "proposals"
}

// FromDomain populates the model from a domain proposal
func (m *ProposalModel) FromDomain(p *proposal.Proposal) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Title = p.Title
	m.Description = p.Description
	m.AssetType = p.AssetType
	m.CreatorID = p.CreatorID
	m.CreatorName = p.CreatorName
	m.FundingGoal = p.FundingGoal
	m.CurrentFunding = p.CurrentFunding
	m.MinimumInvestment = p.MinimumInvestment
	m.Deadline = p.Deadline
	m.Status = p.Status
}

// ToDomain converts the model to a domain proposal
func (m *ProposalModel) ToDomain() *proposal.Proposal {
	return &proposal.Proposal{
		BaseEntity:        m.BaseModel.ToDomain(),
		Title:             m.Title,
		Description:       m.Description,
		AssetType:         m.AssetType,
		CreatorID:         m.CreatorID,
		CreatorName:       m.CreatorName,
		FundingGoal:       m.FundingGoal,
		CurrentFunding:    m.CurrentFunding,
		MinimumInvestment: m.MinimumInvestment,
		Deadline:          m.Deadline,
		Status:            m.Status,
	}
}

// UserModel is the persistence model for platform users. Recipient
// resolution joins it against investments to compute commitment state.
type UserModel struct {
	BaseModel
	Email         string `gorm:"type:varchar(255);index"`
	PhoneNumber   string `gorm:"type:varchar(50)"`
	WalletAddress string `gorm:"type:varchar(128);uniqueIndex"`
	DisplayName   string `gorm:"type:varchar(200)"`
	IsAccredited  bool   `gorm:"not null;default:false"`
	SegmentsJSON  string `gorm:"column:segments;type:jsonb;not null;default:'[]'"`
	Active        bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// InvestmentModel is one user's committed amount in one proposal
type InvestmentModel struct {
	BaseModel
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_investments_user_proposal"`
	ProposalID uuid.UUID       `gorm:"type:uuid;not null;index:idx_investments_user_proposal"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
}

// TableName returns the table name for GORM
func (InvestmentModel) TableName() string {
	return "investments"
}
