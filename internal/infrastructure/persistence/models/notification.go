package models

import (
	"encoding/json"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TriggerModel is the persistence model for notification triggers. Template
// and targeting are structured payloads stored as JSON; the scalar columns
// carry everything the effective-set query needs.
type TriggerModel struct {
	BaseModel
	Name               string                    `gorm:"type:varchar(200);not null"`
	Kind               notification.TriggerKind  `gorm:"type:varchar(30);not null"`
	Enabled            bool                      `gorm:"not null;index"`
	Scope              notification.TriggerScope `gorm:"type:varchar(20);not null;index"`
	CreatorID          *uuid.UUID                `gorm:"type:uuid;index"`
	ProposalID         *uuid.UUID                `gorm:"type:uuid;index"`
	OffsetValue        *int                      `gorm:"column:offset_value"`
	OffsetUnit         *string                   `gorm:"type:varchar(10)"`
	FrequencyJSON      string                    `gorm:"column:frequency;type:jsonb;not null;default:'{}'"`
	MilestoneThreshold *decimal.Decimal          `gorm:"type:decimal(5,2)"`
	TemplateJSON       string                    `gorm:"column:template;type:jsonb;not null;default:'{}'"`
	TargetingJSON      string                    `gorm:"column:targeting;type:jsonb;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (TriggerModel) TableName() string {
	return "notification_triggers"
}

// triggerFrequency is the stored shape of Frequency
type triggerFrequency struct {
	Type          string `json:"type"`
	IntervalValue int    `json:"interval_value,omitempty"`
	IntervalUnit  string `json:"interval_unit,omitempty"`
	MaxReminders  int    `json:"max_reminders,omitempty"`
}

// triggerTemplate is the stored shape of MessageTemplate
type triggerTemplate struct {
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Channels []string `json:"channels"`
	Urgency  string   `json:"urgency"`
}

// triggerTargeting is the stored shape of Targeting
type triggerTargeting struct {
	Audience          string           `json:"audience"`
	Segments          []string         `json:"segments,omitempty"`
	MinimumInvestment *decimal.Decimal `json:"minimum_investment,omitempty"`
}

// FromDomain populates the model from a domain trigger
func (m *TriggerModel) FromDomain(t *notification.Trigger) error {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Name = t.Name
	m.Kind = t.Kind
	m.Enabled = t.Enabled
	m.Scope = t.Scope
	m.CreatorID = t.CreatorID
	m.ProposalID = t.ProposalID
	m.MilestoneThreshold = t.MilestoneThreshold

	m.OffsetValue = nil
	m.OffsetUnit = nil
	if t.Offset != nil {
		v := t.Offset.Value
		u := string(t.Offset.Unit)
		m.OffsetValue = &v
		m.OffsetUnit = &u
	}

	freq := triggerFrequency{Type: string(t.Frequency.Type), MaxReminders: t.Frequency.MaxReminders}
	if t.Frequency.Interval != nil {
		freq.IntervalValue = t.Frequency.Interval.Value
		freq.IntervalUnit = string(t.Frequency.Interval.Unit)
	}
	freqJSON, err := json.Marshal(freq)
	if err != nil {
		return err
	}
	m.FrequencyJSON = string(freqJSON)

	channels := make([]string, len(t.Template.Channels))
	for i, c := range t.Template.Channels {
		channels[i] = string(c)
	}
	tmplJSON, err := json.Marshal(triggerTemplate{
		Subject:  t.Template.Subject,
		Body:     t.Template.Body,
		Channels: channels,
		Urgency:  string(t.Template.Urgency),
	})
	if err != nil {
		return err
	}
	m.TemplateJSON = string(tmplJSON)

	targJSON, err := json.Marshal(triggerTargeting{
		Audience:          string(t.Targeting.Audience),
		Segments:          t.Targeting.Segments,
		MinimumInvestment: t.Targeting.MinimumInvestment,
	})
	if err != nil {
		return err
	}
	m.TargetingJSON = string(targJSON)
	return nil
}

// ToDomain converts the model to a domain trigger
func (m *TriggerModel) ToDomain() (*notification.Trigger, error) {
	t := &notification.Trigger{
		BaseEntity:         m.BaseModel.ToDomain(),
		Name:               m.Name,
		Kind:               m.Kind,
		Enabled:            m.Enabled,
		Scope:              m.Scope,
		CreatorID:          m.CreatorID,
		ProposalID:         m.ProposalID,
		MilestoneThreshold: m.MilestoneThreshold,
	}

	if m.OffsetValue != nil && m.OffsetUnit != nil {
		t.Offset = &notification.Offset{
			Value: *m.OffsetValue,
			Unit:  notification.OffsetUnit(*m.OffsetUnit),
		}
	}

	var freq triggerFrequency
	if err := json.Unmarshal([]byte(m.FrequencyJSON), &freq); err != nil {
		return nil, err
	}
	t.Frequency = notification.Frequency{
		Type:         notification.FrequencyType(freq.Type),
		MaxReminders: freq.MaxReminders,
	}
	if freq.IntervalUnit != "" {
		t.Frequency.Interval = &notification.Interval{
			Value: freq.IntervalValue,
			Unit:  notification.IntervalUnit(freq.IntervalUnit),
		}
	}

	var tmpl triggerTemplate
	if err := json.Unmarshal([]byte(m.TemplateJSON), &tmpl); err != nil {
		return nil, err
	}
	channels := make([]notification.Channel, len(tmpl.Channels))
	for i, c := range tmpl.Channels {
		channels[i] = notification.Channel(c)
	}
	t.Template = notification.MessageTemplate{
		Subject:  tmpl.Subject,
		Body:     tmpl.Body,
		Channels: channels,
		Urgency:  notification.Urgency(tmpl.Urgency),
	}

	var targ triggerTargeting
	if err := json.Unmarshal([]byte(m.TargetingJSON), &targ); err != nil {
		return nil, err
	}
	t.Targeting = notification.Targeting{
		Audience:          notification.Audience(targ.Audience),
		Segments:          targ.Segments,
		MinimumInvestment: targ.MinimumInvestment,
	}

	return t, nil
}

// DeliveryRecordModel is the persistence model for the delivery ledger.
// Per-channel outcomes are stored as a JSON array in attempt order.
type DeliveryRecordModel struct {
	BaseModel
	TriggerID    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ProposalID   uuid.UUID                   `gorm:"type:uuid;not null;index"`
	RecipientID  uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ScheduledFor time.Time                   `gorm:"not null"`
	SentAt       *time.Time                  ``
	Status       notification.DeliveryStatus `gorm:"type:varchar(20);not null;index"`
	AttemptCount int                         `gorm:"not null;default:0"`
	ResultsJSON  string                      `gorm:"column:results;type:jsonb;not null;default:'[]'"`
}

// TableName returns the table name for GORM
func (DeliveryRecordModel) TableName() string {
	return "notification_deliveries"
}

// FromDomain populates the model from a domain delivery record
func (m *DeliveryRecordModel) FromDomain(r *notification.DeliveryRecord) error {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TriggerID = r.TriggerID
	m.ProposalID = r.ProposalID
	m.RecipientID = r.RecipientID
	m.ScheduledFor = r.ScheduledFor
	m.SentAt = r.SentAt
	m.Status = r.Status
	m.AttemptCount = r.AttemptCount

	results, err := json.Marshal(r.Results)
	if err != nil {
		return err
	}
	m.ResultsJSON = string(results)
	return nil
}

// ToDomain converts the model to a domain delivery record
func (m *DeliveryRecordModel) ToDomain() (*notification.DeliveryRecord, error) {
	r := &notification.DeliveryRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		TriggerID:    m.TriggerID,
		ProposalID:   m.ProposalID,
		RecipientID:  m.RecipientID,
		ScheduledFor: m.ScheduledFor,
		SentAt:       m.SentAt,
		Status:       m.Status,
		AttemptCount: m.AttemptCount,
	}
	if err := json.Unmarshal([]byte(m.ResultsJSON), &r.Results); err != nil {
		return nil, err
	}
	return r, nil
}
