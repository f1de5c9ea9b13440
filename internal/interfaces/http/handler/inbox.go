package handler

import (
	"github.com/cf1/backend/internal/infrastructure/transport"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InboxHandler exposes a recipient's in-app notification inbox
type InboxHandler struct {
	BaseHandler
	inbox transport.InboxStore
}

// NewInboxHandler creates a new InboxHandler
func NewInboxHandler(inbox transport.InboxStore) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

// ListMessages returns a recipient's messages, newest first
func (h *InboxHandler) ListMessages(c *gin.Context) {
	recipientID, err := uuid.Parse(c.Param("recipientID"))
	if err != nil {
		h.BadRequest(c, "Invalid recipient ID")
		return
	}

	messages, err := h.inbox.ListByRecipient(c.Request.Context(), recipientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if messages == nil {
		messages = []transport.InboxMessage{}
	}
	h.Success(c, messages)
}

// UnreadCount returns the number of unread messages for a recipient
func (h *InboxHandler) UnreadCount(c *gin.Context) {
	recipientID, err := uuid.Parse(c.Param("recipientID"))
	if err != nil {
		h.BadRequest(c, "Invalid recipient ID")
		return
	}

	count, err := h.inbox.UnreadCount(c.Request.Context(), recipientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, UnreadCountResponse{Count: count})
}

// MarkRead flags one message as read; unknown message IDs are a no-op
func (h *InboxHandler) MarkRead(c *gin.Context) {
	recipientID, err := uuid.Parse(c.Param("recipientID"))
	if err != nil {
		h.BadRequest(c, "Invalid recipient ID")
		return
	}
	messageID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	if err := h.inbox.MarkRead(c.Request.Context(), recipientID, messageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
