package notification

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/domain/proposal"
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MilestoneStore remembers which milestone triggers already fired for a
// proposal. MarkFired is set-once: the first call for a key returns true,
// every later call returns false, so funding oscillating around a threshold
// can never re-arm a milestone.
type MilestoneStore interface {
	MarkFired(ctx context.Context, triggerID, proposalID uuid.UUID, threshold decimal.Decimal) (bool, error)
}

// SchedulerConfig holds scheduler loop configuration
type SchedulerConfig struct {
	// CheckInterval is the fixed tick cadence
	CheckInterval time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{CheckInterval: 30 * time.Second}
}

// SchedulerStatus is the externally visible state of the loop
type SchedulerStatus struct {
	ScheduledCount  int   `json:"scheduled_count"`
	ExecutedCount   int64 `json:"executed_count"`
	CheckIntervalMs int64 `json:"check_interval_ms"`
	IsRunning       bool  `json:"is_running"`
}

// SchedulerService is the single scheduling authority of the process. On a
// fixed tick it claims due entries, re-confirms their triggers, resolves and
// filters recipients, dispatches deliveries and settles entry status. All
// mutation of schedule state happens inside the tick handler or the explicit
// event handlers, serialized by one mutex; an entry claimed from the pending
// set is never dispatched twice.
type SchedulerService struct {
	triggers   notification.TriggerStore
	schedule   notification.ScheduleStore
	ledger     notification.DeliveryLedger
	proposals  proposal.Directory
	recipients notification.RecipientDirectory
	milestones MilestoneStore
	dispatcher *Dispatcher
	publisher  shared.EventPublisher
	logger     *zap.Logger
	config     SchedulerConfig
	nowFn      func() time.Time

	// procMu serializes tick processing against the external event handlers
	procMu sync.Mutex

	runMu     sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	executed  atomic.Int64
}

// NewSchedulerService creates the scheduler service
func NewSchedulerService(
	triggers notification.TriggerStore,
	schedule notification.ScheduleStore,
	ledger notification.DeliveryLedger,
	proposals proposal.Directory,
	recipients notification.RecipientDirectory,
	milestones MilestoneStore,
	dispatcher *Dispatcher,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	config SchedulerConfig,
) *SchedulerService {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultSchedulerConfig().CheckInterval
	}
	return &SchedulerService{
		triggers:   triggers,
		schedule:   schedule,
		ledger:     ledger,
		proposals:  proposals,
		recipients: recipients,
		milestones: milestones,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		config:     config,
		nowFn:      time.Now,
	}
}

// Start begins the tick loop. Starting an already-running scheduler is a
// no-op, not an error.
func (s *SchedulerService) Start(ctx context.Context) error {
	s.runMu.Lock()
	if s.isRunning {
		s.runMu.Unlock()
		return nil
	}
	s.isRunning = true
	s.runMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Notification scheduler started",
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop halts the loop, letting any in-flight tick finish its current batch
// before returning.
func (s *SchedulerService) Stop(ctx context.Context) error {
	s.runMu.Lock()
	if !s.isRunning {
		s.runMu.Unlock()
		return nil
	}
	s.isRunning = false
	s.runMu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Notification scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Notification scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the loop is active
func (s *SchedulerService) IsRunning() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.isRunning
}

// Status reports the current loop state
func (s *SchedulerService) Status(ctx context.Context) (SchedulerStatus, error) {
	pending, err := s.schedule.CountPending(ctx)
	if err != nil {
		return SchedulerStatus{}, err
	}
	return SchedulerStatus{
		ScheduledCount:  pending,
		ExecutedCount:   s.executed.Load(),
		CheckIntervalMs: s.config.CheckInterval.Milliseconds(),
		IsRunning:       s.IsRunning(),
	}, nil
}

// run is the tick loop goroutine
func (s *SchedulerService) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scheduler tick loop stopping")
			return
		case <-ticker.C:
			// Cancellation stops the loop between ticks only; a batch
			// already dispatching finishes its sends before Stop returns.
			s.Tick(context.WithoutCancel(ctx))
		}
	}
}

// Tick processes every pending entry whose time has arrived. Exposed so
// tests and admin tooling can drive the loop deterministically.
func (s *SchedulerService) Tick(ctx context.Context) {
	s.procMu.Lock()
	defer s.procMu.Unlock()

	due, err := s.schedule.ClaimDue(ctx, s.nowFn())
	if err != nil {
		s.logger.Error("Failed to claim due entries", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	s.logger.Info("Processing due notification entries", zap.Int("count", len(due)))
	for _, entry := range due {
		s.processEntry(ctx, entry)
	}
}

// processEntry fires one claimed entry end to end
func (s *SchedulerService) processEntry(ctx context.Context, entry *notification.ScheduledEntry) {
	prop, err := s.proposals.GetProposal(ctx, entry.ProposalID)
	if err != nil {
		s.logger.Error("Proposal lookup failed for entry",
			zap.String("entry_id", entry.ID.String()),
			zap.String("proposal_id", entry.ProposalID.String()),
			zap.Error(err),
		)
		s.settleEntry(ctx, entry, false, 0)
		return
	}

	trigger := s.effectiveTrigger(ctx, entry, prop)
	if trigger == nil || !trigger.Enabled {
		// Trigger removed or disabled since scheduling: cancel, don't dispatch.
		if cancelErr := entry.Cancel(); cancelErr == nil {
			if err := s.schedule.Update(ctx, entry); err != nil {
				s.logger.Error("Failed to persist cancelled entry", zap.Error(err))
			}
		}
		s.logger.Info("Entry cancelled: trigger no longer effective",
			zap.String("entry_id", entry.ID.String()),
			zap.String("trigger_id", entry.TriggerID.String()),
		)
		return
	}

	candidates, err := s.recipients.ListCandidateRecipients(ctx, entry.ProposalID)
	if err != nil {
		s.logger.Error("Recipient lookup failed",
			zap.String("proposal_id", entry.ProposalID.String()),
			zap.Error(err),
		)
		s.settleEntry(ctx, entry, false, 0)
		return
	}

	anySent := false
	eligible := 0
	for _, recipient := range candidates {
		if !trigger.Targeting.Matches(recipient) {
			continue
		}
		eligible++

		record := s.dispatcher.Dispatch(ctx, trigger, entry, prop, recipient)
		if err := s.ledger.Append(ctx, record); err != nil {
			s.logger.Error("Failed to append delivery record", zap.Error(err))
		}
		s.publish(ctx, notification.NewDeliveryRecordedEvent(record))

		if record.Status == notification.DeliverySent {
			anySent = true
		}
	}

	s.settleEntry(ctx, entry, anySent, eligible)
}

// settleEntry finalizes an entry's status after dispatch
func (s *SchedulerService) settleEntry(ctx context.Context, entry *notification.ScheduledEntry, anySent bool, recipients int) {
	var err error
	if anySent {
		err = entry.MarkSent()
	} else {
		err = entry.MarkFailed()
	}
	if err != nil {
		s.logger.Error("Invalid entry transition", zap.Error(err))
		return
	}

	if err := s.schedule.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to persist entry status", zap.Error(err))
	}
	s.executed.Add(1)
	s.publish(ctx, notification.NewEntryFiredEvent(entry, recipients))

	s.logger.Info("Notification entry fired",
		zap.String("entry_id", entry.ID.String()),
		zap.String("trigger_id", entry.TriggerID.String()),
		zap.String("status", string(entry.Status)),
		zap.Int("recipients", recipients),
	)
}

// effectiveTrigger resolves the entry's trigger against the effective set
// for its proposal; nil when the trigger is no longer part of that set.
func (s *SchedulerService) effectiveTrigger(ctx context.Context, entry *notification.ScheduledEntry, prop *proposal.Proposal) *notification.Trigger {
	triggers, err := s.triggers.GetEffectiveTriggers(ctx, prop.ID, prop.CreatorID)
	if err != nil {
		s.logger.Error("Effective trigger resolution failed",
			zap.String("proposal_id", prop.ID.String()),
			zap.Error(err),
		)
		return nil
	}
	for _, t := range triggers {
		if t.ID == entry.TriggerID {
			return t
		}
	}
	return nil
}

// OnProposalCreatedOrApproved computes and enqueues entries from the
// effective trigger set using the proposal's funding deadline.
func (s *SchedulerService) OnProposalCreatedOrApproved(ctx context.Context, proposalID, creatorID uuid.UUID) error {
	s.procMu.Lock()
	defer s.procMu.Unlock()

	prop, err := s.proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}

	triggers, err := s.triggers.GetEffectiveTriggers(ctx, proposalID, creatorID)
	if err != nil {
		return err
	}

	var entries []*notification.ScheduledEntry
	for _, trigger := range triggers {
		if !trigger.Enabled || trigger.Kind != notification.TriggerTimeBased {
			continue
		}
		for _, fireAt := range notification.ResolveFireTimes(trigger, prop.Deadline, s.nowFn) {
			entries = append(entries, notification.NewScheduledEntry(trigger.ID, proposalID, fireAt))
		}
	}
	if len(entries) == 0 {
		return nil
	}

	if err := s.schedule.Append(ctx, entries...); err != nil {
		return err
	}

	s.logger.Info("Scheduled deadline reminders",
		zap.String("proposal_id", proposalID.String()),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// OnFundingUpdate re-evaluates milestone triggers for the proposal and
// enqueues newly eligible ones. Each milestone fires at most once per
// proposal, no matter how often funding is updated.
func (s *SchedulerService) OnFundingUpdate(ctx context.Context, proposalID, creatorID uuid.UUID) error {
	s.procMu.Lock()
	defer s.procMu.Unlock()

	prop, err := s.proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	progress := prop.FundingProgress()

	triggers, err := s.triggers.GetEffectiveTriggers(ctx, proposalID, creatorID)
	if err != nil {
		return err
	}

	for _, trigger := range triggers {
		if !trigger.Enabled || trigger.Kind != notification.TriggerMilestoneBased || trigger.MilestoneThreshold == nil {
			continue
		}
		if progress.LessThan(*trigger.MilestoneThreshold) {
			continue
		}

		newlyFired, err := s.milestones.MarkFired(ctx, trigger.ID, proposalID, *trigger.MilestoneThreshold)
		if err != nil {
			return err
		}
		if !newlyFired {
			continue
		}

		entry := notification.NewScheduledEntry(trigger.ID, proposalID, s.nowFn())
		if err := s.schedule.Append(ctx, entry); err != nil {
			return err
		}
		s.logger.Info("Milestone trigger armed",
			zap.String("proposal_id", proposalID.String()),
			zap.String("trigger_id", trigger.ID.String()),
			zap.String("threshold", trigger.MilestoneThreshold.String()),
		)
	}
	return nil
}

// OnProposalStatusChange cancels all pending entries for a proposal once it
// reaches a terminal status. Entries already sent or failed are untouched.
func (s *SchedulerService) OnProposalStatusChange(ctx context.Context, proposalID uuid.UUID, status proposal.Status) error {
	if !status.IsTerminal() {
		return nil
	}

	s.procMu.Lock()
	defer s.procMu.Unlock()

	cancelled, err := s.schedule.CancelPending(ctx, proposalID)
	if err != nil {
		return err
	}
	if cancelled > 0 {
		s.publish(ctx, notification.NewScheduleCancelledEvent(proposalID, cancelled))
	}

	s.logger.Info("Cancelled pending notifications for terminal proposal",
		zap.String("proposal_id", proposalID.String()),
		zap.String("status", string(status)),
		zap.Int("cancelled", cancelled),
	)
	return nil
}

// GetDeliveryHistory returns delivery records, optionally scoped to one proposal
func (s *SchedulerService) GetDeliveryHistory(ctx context.Context, proposalID *uuid.UUID) ([]*notification.DeliveryRecord, error) {
	if proposalID != nil {
		return s.ledger.FindByProposal(ctx, *proposalID)
	}
	return s.ledger.FindAll(ctx)
}

// SendTestNotification runs the full render and dispatch pipeline against a
// synthetic proposal, for preview and test-send flows. The real schedule is
// never touched and the result is not written to the ledger.
func (s *SchedulerService) SendTestNotification(ctx context.Context, trigger *notification.Trigger, recipient notification.Recipient) (*notification.DeliveryRecord, error) {
	if err := trigger.Validate(); err != nil {
		return nil, err
	}

	prop := syntheticProposal(s.nowFn())
	entry := notification.NewScheduledEntry(trigger.ID, prop.ID, s.nowFn())

	return s.dispatcher.Dispatch(ctx, trigger, entry, prop, recipient), nil
}

// ResendDelivery re-runs dispatch for an existing delivery record as a new,
// explicit attempt. This is the only "retry" the engine offers; nothing is
// ever retried automatically.
func (s *SchedulerService) ResendDelivery(ctx context.Context, deliveryID uuid.UUID) (*notification.DeliveryRecord, error) {
	s.procMu.Lock()
	defer s.procMu.Unlock()

	original, err := s.ledger.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	trigger, err := s.triggers.FindByID(ctx, original.TriggerID)
	if err != nil {
		return nil, err
	}

	prop, err := s.proposals.GetProposal(ctx, original.ProposalID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.recipients.ListCandidateRecipients(ctx, original.ProposalID)
	if err != nil {
		return nil, err
	}
	var recipient *notification.Recipient
	for i := range candidates {
		if candidates[i].ID == original.RecipientID {
			recipient = &candidates[i]
			break
		}
	}
	if recipient == nil {
		return nil, ErrRecipientUnknown
	}

	entry := notification.NewScheduledEntry(trigger.ID, original.ProposalID, s.nowFn())
	record := s.dispatcher.Dispatch(ctx, trigger, entry, prop, *recipient)
	if err := s.ledger.Append(ctx, record); err != nil {
		return nil, err
	}
	s.publish(ctx, notification.NewDeliveryRecordedEvent(record))
	return record, nil
}

// publish fires a domain event; failures are logged, never fatal
func (s *SchedulerService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

// syntheticProposal is the canned proposal used by test sends
func syntheticProposal(now time.Time) *proposal.Proposal {
	p := &proposal.Proposal{
		BaseEntity:        shared.NewBaseEntity(),
		Title:             "Sample Investment Opportunity",
		CreatorName:       "CF1 Platform",
		AssetType:         "Real Estate",
		FundingGoal:       decimal.NewFromInt(1000000),
		CurrentFunding:    decimal.NewFromInt(650000),
		MinimumInvestment: decimal.NewFromInt(500),
		Deadline:          now.Add(7 * 24 * time.Hour),
		Status:            proposal.StatusActive,
	}
	return p
}
