package handler

import (
	"context"
	"errors"

	appnotification "github.com/cf1/backend/internal/application/notification"
	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/cf1/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationHandler exposes the scheduler loop, the delivery ledger and the
// test-send pipeline over HTTP
type NotificationHandler struct {
	BaseHandler
	scheduler *appnotification.SchedulerService
	triggers  notification.TriggerStore
	logger    *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(scheduler *appnotification.SchedulerService, triggers notification.TriggerStore, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		scheduler: scheduler,
		triggers:  triggers,
		logger:    logger,
	}
}

// SchedulerStatus returns the current state of the tick loop
func (h *NotificationHandler) SchedulerStatus(c *gin.Context) {
	status, err := h.scheduler.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// StartScheduler begins the tick loop. Starting a running scheduler is a no-op.
func (h *NotificationHandler) StartScheduler(c *gin.Context) {
	// The loop outlives the request, so it must not inherit the request context
	if err := h.scheduler.Start(context.Background()); err != nil {
		h.HandleError(c, err)
		return
	}
	status, err := h.scheduler.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// StopScheduler halts the tick loop, waiting for any in-flight tick
func (h *NotificationHandler) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	status, err := h.scheduler.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// ListDeliveries returns delivery history, optionally filtered by proposal.
// Results are paginated with page and page_size query parameters.
func (h *NotificationHandler) ListDeliveries(c *gin.Context) {
	var proposalID *uuid.UUID
	if raw := c.Query("proposal_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid proposal_id")
			return
		}
		proposalID = &id
	}

	filter, err := parseListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	records, err := h.scheduler.GetDeliveryHistory(c.Request.Context(), proposalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	total := int64(len(records))
	records = pageSlice(records, filter)
	responses := make([]DeliveryResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, newDeliveryResponse(r))
	}
	h.Success(c, shared.NewPaginated(responses, total, filter.Page, filter.PageSize))
}

// SendTest runs the full render and dispatch pipeline against a synthetic
// proposal. The schedule and the ledger are never touched.
func (h *NotificationHandler) SendTest(c *gin.Context) {
	var req TestNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trigger, err := h.resolveTestTrigger(c, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if trigger == nil {
		h.BadRequest(c, "Either trigger_id or an inline trigger is required")
		return
	}

	recipient, err := req.Recipient.toDomain()
	if err != nil {
		h.BadRequest(c, "Invalid recipient ID")
		return
	}

	record, err := h.scheduler.SendTestNotification(c.Request.Context(), trigger, recipient)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Test notification dispatched",
		zap.String("trigger_id", trigger.ID.String()),
		zap.String("recipient_id", recipient.ID.String()),
		zap.String("status", string(record.Status)),
	)
	h.Success(c, newDeliveryResponse(record))
}

// resolveTestTrigger loads the referenced trigger or builds one from the
// inline definition
func (h *NotificationHandler) resolveTestTrigger(c *gin.Context, req TestNotificationRequest) (*notification.Trigger, error) {
	if req.TriggerID != nil {
		id, err := uuid.Parse(*req.TriggerID)
		if err != nil {
			return nil, err
		}
		return h.triggers.FindByID(c.Request.Context(), id)
	}
	if req.Trigger != nil {
		return req.Trigger.toDomain()
	}
	return nil, nil
}

// ResendDelivery re-runs dispatch for an existing delivery record as a new,
// explicit attempt
func (h *NotificationHandler) ResendDelivery(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID")
		return
	}

	record, err := h.scheduler.ResendDelivery(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, appnotification.ErrRecipientUnknown) {
			h.ErrorWithCode(c, dto.ErrCodeConflict, err.Error())
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, newDeliveryResponse(record))
}
