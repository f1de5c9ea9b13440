package notification

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recipient is a platform user eligible to receive a notification.
// InvestedAmount is the recipient's recorded commitment in the proposal
// under evaluation, zero when they have not invested.
type Recipient struct {
	ID             uuid.UUID
	Email          string
	PhoneNumber    string
	WalletAddress  string
	DisplayName    string
	HasInvested    bool
	IsAccredited   bool
	Segments       []string
	InvestedAmount decimal.Decimal
}

// Name returns the recipient's display name, falling back to the
// generic salutation used when no name is on file.
func (r Recipient) Name() string {
	if r.DisplayName == "" {
		return "Valued Investor"
	}
	return r.DisplayName
}

// HasEmail returns true if the recipient can be reached by email
func (r Recipient) HasEmail() bool {
	return r.Email != ""
}

// HasPhone returns true if the recipient can be reached by SMS
func (r Recipient) HasPhone() bool {
	return r.PhoneNumber != ""
}
