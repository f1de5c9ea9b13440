package handler

import (
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// OffsetRequest represents a deadline offset in API payloads
type OffsetRequest struct {
	Value int    `json:"value" binding:"required,gt=0" example:"7"`
	Unit  string `json:"unit" binding:"required,oneof=hour day week" example:"day"`
}

// IntervalRequest represents a recurring reminder interval
type IntervalRequest struct {
	Value int    `json:"value" binding:"required,gt=0" example:"1"`
	Unit  string `json:"unit" binding:"required,oneof=hour day" example:"day"`
}

// FrequencyRequest represents how often a time-based trigger fires
type FrequencyRequest struct {
	Type         string           `json:"type" binding:"required,oneof=once recurring" example:"recurring"`
	Interval     *IntervalRequest `json:"interval,omitempty"`
	MaxReminders int              `json:"max_reminders,omitempty" example:"3"`
}

// TemplateRequest represents the message content of a trigger
type TemplateRequest struct {
	Subject  string   `json:"subject" example:"Funding deadline approaching for {{proposal_title}}"`
	Body     string   `json:"body" example:"Only {{days_remaining}} days left to invest."`
	Channels []string `json:"channels" binding:"required,min=1,dive,oneof=email in_app sms"`
	Urgency  string   `json:"urgency,omitempty" binding:"omitempty,oneof=low medium high" example:"medium"`
}

// TargetingRequest represents a trigger's recipient selection rule
type TargetingRequest struct {
	Audience          string   `json:"audience" binding:"required,oneof=all committed potential specific_segments" example:"all"`
	Segments          []string `json:"segments,omitempty"`
	MinimumInvestment *float64 `json:"minimum_investment,omitempty" example:"1000"`
}

// TriggerRequest represents the payload to create a trigger
type TriggerRequest struct {
	Name               string            `json:"name" binding:"required" example:"One week deadline reminder"`
	Kind               string            `json:"kind" binding:"required,oneof=time_based milestone_based custom" example:"time_based"`
	Scope              string            `json:"scope,omitempty" binding:"omitempty,oneof=platform creator proposal" example:"proposal"`
	CreatorID          *string           `json:"creator_id,omitempty" binding:"omitempty,uuid"`
	ProposalID         *string           `json:"proposal_id,omitempty" binding:"omitempty,uuid"`
	Enabled            *bool             `json:"enabled,omitempty"`
	Offset             *OffsetRequest    `json:"offset,omitempty"`
	Frequency          *FrequencyRequest `json:"frequency,omitempty"`
	MilestoneThreshold *float64          `json:"milestone_threshold,omitempty" example:"75"`
	Template           TemplateRequest   `json:"template" binding:"required"`
	Targeting          *TargetingRequest `json:"targeting,omitempty"`
}

// TriggerUpdateRequest represents a partial trigger edit; nil fields are untouched
type TriggerUpdateRequest struct {
	Name               *string           `json:"name,omitempty"`
	Enabled            *bool             `json:"enabled,omitempty"`
	Offset             *OffsetRequest    `json:"offset,omitempty"`
	Frequency          *FrequencyRequest `json:"frequency,omitempty"`
	MilestoneThreshold *float64          `json:"milestone_threshold,omitempty"`
	Template           *TemplateRequest  `json:"template,omitempty"`
	Targeting          *TargetingRequest `json:"targeting,omitempty"`
}

// toDomain builds a domain trigger from the request. Invariants are enforced
// by Trigger.Validate at save time, not here.
func (r TriggerRequest) toDomain() (*notification.Trigger, error) {
	t := notification.NewTrigger(r.Name, notification.TriggerKind(r.Kind))

	if r.Scope != "" {
		t.Scope = notification.TriggerScope(r.Scope)
	}
	if r.CreatorID != nil {
		id, err := uuid.Parse(*r.CreatorID)
		if err != nil {
			return nil, err
		}
		t.CreatorID = &id
	}
	if r.ProposalID != nil {
		id, err := uuid.Parse(*r.ProposalID)
		if err != nil {
			return nil, err
		}
		t.ProposalID = &id
	}
	if r.Enabled != nil {
		t.Enabled = *r.Enabled
	}
	if r.Offset != nil {
		t.Offset = r.Offset.toDomain()
	}
	if r.Frequency != nil {
		t.Frequency = r.Frequency.toDomain()
	}
	if r.MilestoneThreshold != nil {
		t.MilestoneThreshold = toDecimalPtr(*r.MilestoneThreshold)
	}
	t.Template = r.Template.toDomain()
	if r.Targeting != nil {
		t.Targeting = r.Targeting.toDomain()
	} else {
		t.Targeting = notification.Targeting{Audience: notification.AudienceAll}
	}
	return t, nil
}

func (r OffsetRequest) toDomain() *notification.Offset {
	return &notification.Offset{Value: r.Value, Unit: notification.OffsetUnit(r.Unit)}
}

func (r FrequencyRequest) toDomain() notification.Frequency {
	f := notification.Frequency{
		Type:         notification.FrequencyType(r.Type),
		MaxReminders: r.MaxReminders,
	}
	if r.Interval != nil {
		f.Interval = &notification.Interval{
			Value: r.Interval.Value,
			Unit:  notification.IntervalUnit(r.Interval.Unit),
		}
	}
	return f
}

func (r TemplateRequest) toDomain() notification.MessageTemplate {
	channels := make([]notification.Channel, 0, len(r.Channels))
	for _, c := range r.Channels {
		channels = append(channels, notification.Channel(c))
	}
	return notification.MessageTemplate{
		Subject:  r.Subject,
		Body:     r.Body,
		Channels: channels,
		Urgency:  notification.Urgency(r.Urgency),
	}
}

func (r TargetingRequest) toDomain() notification.Targeting {
	t := notification.Targeting{
		Audience: notification.Audience(r.Audience),
		Segments: r.Segments,
	}
	if r.MinimumInvestment != nil {
		t.MinimumInvestment = toDecimalPtr(*r.MinimumInvestment)
	}
	return t
}

// applyTo patches the loaded trigger with the non-nil fields of the update
func (r TriggerUpdateRequest) applyTo(t *notification.Trigger) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Enabled != nil {
		if *r.Enabled {
			t.Enable()
		} else {
			t.Disable()
		}
	}
	if r.Offset != nil {
		t.Offset = r.Offset.toDomain()
	}
	if r.Frequency != nil {
		t.Frequency = r.Frequency.toDomain()
	}
	if r.MilestoneThreshold != nil {
		t.MilestoneThreshold = toDecimalPtr(*r.MilestoneThreshold)
	}
	if r.Template != nil {
		t.Template = r.Template.toDomain()
	}
	if r.Targeting != nil {
		t.Targeting = r.Targeting.toDomain()
	}
	t.Touch()
}

// TriggerResponse represents a trigger in API responses
type TriggerResponse struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Kind               string              `json:"kind"`
	Enabled            bool                `json:"enabled"`
	Scope              string              `json:"scope"`
	CreatorID          *string             `json:"creator_id,omitempty"`
	ProposalID         *string             `json:"proposal_id,omitempty"`
	Offset             *OffsetRequest      `json:"offset,omitempty"`
	Frequency          FrequencyRequest    `json:"frequency"`
	MilestoneThreshold *float64            `json:"milestone_threshold,omitempty"`
	Template           TemplateResponse    `json:"template"`
	Targeting          TargetingResponse   `json:"targeting"`
	CreatedAt          string              `json:"created_at"`
	UpdatedAt          string              `json:"updated_at"`
}

// TemplateResponse represents message content in API responses
type TemplateResponse struct {
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Channels []string `json:"channels"`
	Urgency  string   `json:"urgency,omitempty"`
}

// TargetingResponse represents a targeting rule in API responses
type TargetingResponse struct {
	Audience          string   `json:"audience"`
	Segments          []string `json:"segments,omitempty"`
	MinimumInvestment *float64 `json:"minimum_investment,omitempty"`
}

func newTriggerResponse(t *notification.Trigger) TriggerResponse {
	resp := TriggerResponse{
		ID:      t.ID.String(),
		Name:    t.Name,
		Kind:    string(t.Kind),
		Enabled: t.Enabled,
		Scope:   string(t.Scope),
		Frequency: FrequencyRequest{
			Type:         string(t.Frequency.Type),
			MaxReminders: t.Frequency.MaxReminders,
		},
		Template: TemplateResponse{
			Subject: t.Template.Subject,
			Body:    t.Template.Body,
			Urgency: string(t.Template.Urgency),
		},
		Targeting: TargetingResponse{
			Audience: string(t.Targeting.Audience),
			Segments: t.Targeting.Segments,
		},
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
	if t.CreatorID != nil {
		s := t.CreatorID.String()
		resp.CreatorID = &s
	}
	if t.ProposalID != nil {
		s := t.ProposalID.String()
		resp.ProposalID = &s
	}
	if t.Offset != nil {
		resp.Offset = &OffsetRequest{Value: t.Offset.Value, Unit: string(t.Offset.Unit)}
	}
	if t.Frequency.Interval != nil {
		resp.Frequency.Interval = &IntervalRequest{
			Value: t.Frequency.Interval.Value,
			Unit:  string(t.Frequency.Interval.Unit),
		}
	}
	if t.MilestoneThreshold != nil {
		f, _ := t.MilestoneThreshold.Float64()
		resp.MilestoneThreshold = &f
	}
	if t.Targeting.MinimumInvestment != nil {
		f, _ := t.Targeting.MinimumInvestment.Float64()
		resp.Targeting.MinimumInvestment = &f
	}
	for _, c := range t.Template.Channels {
		resp.Template.Channels = append(resp.Template.Channels, string(c))
	}
	return resp
}

// DeliveryResponse represents a delivery record in API responses
type DeliveryResponse struct {
	ID           string                       `json:"id"`
	TriggerID    string                       `json:"trigger_id"`
	ProposalID   string                       `json:"proposal_id"`
	RecipientID  string                       `json:"recipient_id"`
	ScheduledFor string                       `json:"scheduled_for"`
	SentAt       *string                      `json:"sent_at,omitempty"`
	Status       string                       `json:"status"`
	AttemptCount int                          `json:"attempt_count"`
	Results      []notification.ChannelResult `json:"results"`
}

func newDeliveryResponse(r *notification.DeliveryRecord) DeliveryResponse {
	resp := DeliveryResponse{
		ID:           r.ID.String(),
		TriggerID:    r.TriggerID.String(),
		ProposalID:   r.ProposalID.String(),
		RecipientID:  r.RecipientID.String(),
		ScheduledFor: r.ScheduledFor.Format(time.RFC3339),
		Status:       string(r.Status),
		AttemptCount: r.AttemptCount,
		Results:      r.Results,
	}
	if r.SentAt != nil {
		s := r.SentAt.Format(time.RFC3339)
		resp.SentAt = &s
	}
	return resp
}

// RecipientRequest represents the target of a test notification
type RecipientRequest struct {
	ID             string   `json:"id" binding:"required,uuid"`
	Email          string   `json:"email" binding:"omitempty,email"`
	PhoneNumber    string   `json:"phone_number,omitempty"`
	DisplayName    string   `json:"display_name,omitempty"`
	HasInvested    bool     `json:"has_invested,omitempty"`
	IsAccredited   bool     `json:"is_accredited,omitempty"`
	Segments       []string `json:"segments,omitempty"`
	InvestedAmount float64  `json:"invested_amount,omitempty"`
}

func (r RecipientRequest) toDomain() (notification.Recipient, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return notification.Recipient{}, err
	}
	return notification.Recipient{
		ID:             id,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		DisplayName:    r.DisplayName,
		HasInvested:    r.HasInvested,
		IsAccredited:   r.IsAccredited,
		Segments:       r.Segments,
		InvestedAmount: toDecimal(r.InvestedAmount),
	}, nil
}

// TestNotificationRequest runs the render and dispatch pipeline without
// touching the schedule. Exactly one of trigger_id or trigger must be set.
type TestNotificationRequest struct {
	TriggerID *string          `json:"trigger_id,omitempty" binding:"omitempty,uuid"`
	Trigger   *TriggerRequest  `json:"trigger,omitempty"`
	Recipient RecipientRequest `json:"recipient" binding:"required"`
}

// ProposalEventRequest represents an incoming proposal lifecycle event
type ProposalEventRequest struct {
	Event     string `json:"event" binding:"required,oneof=created_or_approved funding_updated status_changed"`
	CreatorID string `json:"creator_id,omitempty" binding:"omitempty,uuid"`
	Status    string `json:"status,omitempty"`
}

// ProposalEventResponse acknowledges a processed proposal event
type ProposalEventResponse struct {
	Event      string `json:"event"`
	ProposalID string `json:"proposal_id"`
}

// UnreadCountResponse reports unread inbox messages for a recipient
type UnreadCountResponse struct {
	Count int `json:"count"`
}
