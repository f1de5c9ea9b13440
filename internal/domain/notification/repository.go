package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TriggerStore persists trigger definitions across the three configuration
// layers and resolves the effective set for a proposal.
type TriggerStore interface {
	// GetEffectiveTriggers returns the trigger set governing the proposal:
	// the proposal's own enabled overrides if any exist, otherwise the
	// creator's enabled overrides, otherwise the platform defaults. The
	// winning layer replaces the others wholesale.
	GetEffectiveTriggers(ctx context.Context, proposalID, creatorID uuid.UUID) ([]*Trigger, error)

	// FindByID returns a trigger regardless of scope
	FindByID(ctx context.Context, id uuid.UUID) (*Trigger, error)

	// List returns all triggers in a scope; creator/proposal scopes are
	// filtered by owner when the owner ID is non-nil
	List(ctx context.Context, scope TriggerScope, ownerID *uuid.UUID) ([]*Trigger, error)

	// Save inserts or updates a trigger
	Save(ctx context.Context, t *Trigger) error

	// Delete removes a creator or proposal override. Platform defaults
	// are never hard-deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScheduleStore holds pending scheduled entries and the terminal record of
// fired ones.
type ScheduleStore interface {
	// Append adds entries to the pending set
	Append(ctx context.Context, entries ...*ScheduledEntry) error

	// ClaimDue atomically removes and returns every pending entry whose
	// scheduled-for time is at or before now. An entry claimed once is
	// never returned again, which is what prevents double dispatch.
	ClaimDue(ctx context.Context, now time.Time) ([]*ScheduledEntry, error)

	// Update persists an entry's post-dispatch state
	Update(ctx context.Context, entry *ScheduledEntry) error

	// CancelPending marks every pending entry for the proposal as
	// cancelled and returns how many were affected
	CancelPending(ctx context.Context, proposalID uuid.UUID) (int, error)

	// CountPending returns the number of entries still waiting to fire
	CountPending(ctx context.Context) (int, error)

	// FindByProposal returns all entries for a proposal, any status
	FindByProposal(ctx context.Context, proposalID uuid.UUID) ([]*ScheduledEntry, error)
}

// DeliveryLedger records every delivery attempt and its per-channel
// outcomes. The reference configuration is in-memory; a durable
// implementation can be swapped in without touching scheduling logic.
type DeliveryLedger interface {
	// Append records a completed delivery attempt
	Append(ctx context.Context, record *DeliveryRecord) error

	// FindByID returns a single delivery record
	FindByID(ctx context.Context, id uuid.UUID) (*DeliveryRecord, error)

	// FindByProposal returns the delivery history for one proposal,
	// newest first
	FindByProposal(ctx context.Context, proposalID uuid.UUID) ([]*DeliveryRecord, error)

	// FindAll returns the full delivery history, newest first
	FindAll(ctx context.Context) ([]*DeliveryRecord, error)
}

// RecipientDirectory resolves the candidate recipients for a proposal.
// Audience filtering happens afterwards, in the targeting rule.
type RecipientDirectory interface {
	ListCandidateRecipients(ctx context.Context, proposalID uuid.UUID) ([]Recipient, error)
}
