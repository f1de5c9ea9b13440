package persistence

import (
	"context"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the notification engine's tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.TriggerModel{},
		&models.DeliveryRecordModel{},
		&models.ProposalModel{},
		&models.UserModel{},
		&models.InvestmentModel{},
		&models.OutboxEntryModel{},
	)
}

// EnsurePlatformDefaults seeds the platform trigger layer on first boot.
// An empty platform layer would silently disable all reminders, so a fresh
// database gets a sensible baseline; existing platform triggers are left
// untouched.
func EnsurePlatformDefaults(ctx context.Context, triggers notification.TriggerStore, logger *zap.Logger) error {
	existing, err := triggers.List(ctx, notification.ScopePlatform, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, t := range defaultPlatformTriggers() {
		if err := triggers.Save(ctx, t); err != nil {
			return err
		}
	}
	logger.Info("Seeded platform default notification triggers", zap.Int("count", 3))
	return nil
}

func defaultPlatformTriggers() []*notification.Trigger {
	weekOut := notification.NewTrigger("One week deadline reminder", notification.TriggerTimeBased)
	weekOut.Offset = &notification.Offset{Value: 7, Unit: notification.OffsetDays}
	weekOut.Template = notification.MessageTemplate{
		Subject:  "One week left to invest in {{proposalTitle}}",
		Body:     "Hi {{recipientName}}, the funding deadline for {{proposalTitle}} by {{creatorName}} is one week away. The proposal is {{fundingProgress}} funded with {{timeLeft}} remaining.",
		Channels: []notification.Channel{notification.ChannelEmail, notification.ChannelInApp},
		Urgency:  notification.UrgencyMedium,
	}
	weekOut.Targeting = notification.Targeting{Audience: notification.AudienceAll}

	finalPush := notification.NewTrigger("Final 48 hours reminder", notification.TriggerTimeBased)
	finalPush.Offset = &notification.Offset{Value: 48, Unit: notification.OffsetHours}
	finalPush.Frequency = notification.Frequency{
		Type:         notification.FrequencyRecurring,
		Interval:     &notification.Interval{Value: 1, Unit: notification.IntervalDays},
		MaxReminders: 3,
	}
	finalPush.Template = notification.MessageTemplate{
		Subject:  "{{proposalTitle}} closes in {{timeLeft}}",
		Body:     "Hi {{recipientName}}, only {{timeLeft}} left to invest in {{proposalTitle}}. Minimum investment is {{minimumInvestment}}.",
		Channels: []notification.Channel{notification.ChannelEmail, notification.ChannelInApp, notification.ChannelSMS},
		Urgency:  notification.UrgencyHigh,
	}
	finalPush.Targeting = notification.Targeting{Audience: notification.AudiencePotential}

	milestone := notification.NewTrigger("75 percent funding milestone", notification.TriggerMilestoneBased)
	threshold := decimal.NewFromInt(75)
	milestone.MilestoneThreshold = &threshold
	milestone.Template = notification.MessageTemplate{
		Subject:  "{{proposalTitle}} is {{fundingProgress}} funded",
		Body:     "{{proposalTitle}} by {{creatorName}} just passed {{fundingProgress}} of its {{fundingGoal}} goal. {{timeLeft}} remaining.",
		Channels: []notification.Channel{notification.ChannelInApp},
		Urgency:  notification.UrgencyLow,
	}
	milestone.Targeting = notification.Targeting{Audience: notification.AudienceCommitted}

	return []*notification.Trigger{weekOut, finalPush, milestone}
}
