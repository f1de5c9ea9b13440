package handler

import (
	appnotification "github.com/cf1/backend/internal/application/notification"
	"github.com/cf1/backend/internal/domain/proposal"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalEventHandler receives proposal lifecycle events from collaborating
// services and feeds them into the scheduler
type ProposalEventHandler struct {
	BaseHandler
	scheduler *appnotification.SchedulerService
	logger    *zap.Logger
}

// NewProposalEventHandler creates a new ProposalEventHandler
func NewProposalEventHandler(scheduler *appnotification.SchedulerService, logger *zap.Logger) *ProposalEventHandler {
	return &ProposalEventHandler{scheduler: scheduler, logger: logger}
}

// PostEvent applies one proposal event. created_or_approved builds the
// proposal's schedule, funding_updated re-evaluates milestone triggers and
// status_changed cancels pending work for terminal states.
func (h *ProposalEventHandler) PostEvent(c *gin.Context) {
	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid proposal ID")
		return
	}

	var req ProposalEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	switch req.Event {
	case "created_or_approved", "funding_updated":
		if req.CreatorID == "" {
			h.BadRequest(c, "creator_id is required for this event")
			return
		}
		creatorID, err := uuid.Parse(req.CreatorID)
		if err != nil {
			h.BadRequest(c, "Invalid creator_id")
			return
		}
		if req.Event == "created_or_approved" {
			err = h.scheduler.OnProposalCreatedOrApproved(ctx, proposalID, creatorID)
		} else {
			err = h.scheduler.OnFundingUpdate(ctx, proposalID, creatorID)
		}
		if err != nil {
			h.HandleError(c, err)
			return
		}

	case "status_changed":
		status := proposal.Status(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown proposal status")
			return
		}
		if err := h.scheduler.OnProposalStatusChange(ctx, proposalID, status); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	h.logger.Info("Proposal event processed",
		zap.String("proposal_id", proposalID.String()),
		zap.String("event", req.Event),
	)
	h.Success(c, ProposalEventResponse{
		Event:      req.Event,
		ProposalID: proposalID.String(),
	})
}
