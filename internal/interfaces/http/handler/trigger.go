package handler

import (
	"github.com/cf1/backend/internal/domain/notification"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TriggerHandler manages notification trigger configuration across the
// platform, creator and proposal layers
type TriggerHandler struct {
	BaseHandler
	triggers notification.TriggerStore
	logger   *zap.Logger
}

// NewTriggerHandler creates a new TriggerHandler
func NewTriggerHandler(triggers notification.TriggerStore, logger *zap.Logger) *TriggerHandler {
	return &TriggerHandler{triggers: triggers, logger: logger}
}

// ListTriggers returns triggers, optionally filtered by scope and owner
func (h *TriggerHandler) ListTriggers(c *gin.Context) {
	var ownerID *uuid.UUID
	if raw := c.Query("owner_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid owner_id")
			return
		}
		ownerID = &id
	}

	scopes := []notification.TriggerScope{
		notification.ScopePlatform,
		notification.ScopeCreator,
		notification.ScopeProposal,
	}
	if raw := c.Query("scope"); raw != "" {
		scope := notification.TriggerScope(raw)
		if !scope.IsValid() {
			h.BadRequest(c, "Unknown scope")
			return
		}
		scopes = []notification.TriggerScope{scope}
	}

	var responses []TriggerResponse
	for _, scope := range scopes {
		triggers, err := h.triggers.List(c.Request.Context(), scope, ownerID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		for _, t := range triggers {
			responses = append(responses, newTriggerResponse(t))
		}
	}
	if responses == nil {
		responses = []TriggerResponse{}
	}
	h.Success(c, responses)
}

// GetTrigger returns one trigger by ID
func (h *TriggerHandler) GetTrigger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID")
		return
	}

	trigger, err := h.triggers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newTriggerResponse(trigger))
}

// CreateTrigger stores a new trigger. Validation happens at save time and
// surfaces as a 400 with the offending rule.
func (h *TriggerHandler) CreateTrigger(c *gin.Context) {
	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trigger, err := req.toDomain()
	if err != nil {
		h.BadRequest(c, "Invalid owner ID")
		return
	}

	if err := h.triggers.Save(c.Request.Context(), trigger); err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Trigger created",
		zap.String("trigger_id", trigger.ID.String()),
		zap.String("name", trigger.Name),
		zap.String("scope", string(trigger.Scope)),
	)
	h.Created(c, newTriggerResponse(trigger))
}

// UpdateTrigger patches an existing trigger; nil fields are left untouched
func (h *TriggerHandler) UpdateTrigger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID")
		return
	}

	var req TriggerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trigger, err := h.triggers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	req.applyTo(trigger)

	if err := h.triggers.Save(c.Request.Context(), trigger); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, newTriggerResponse(trigger))
}

// DeleteTrigger removes a creator or proposal override. Platform defaults
// are protected and respond with 403.
func (h *TriggerHandler) DeleteTrigger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trigger ID")
		return
	}

	if err := h.triggers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Trigger deleted", zap.String("trigger_id", id.String()))
	h.NoContent(c)
}
