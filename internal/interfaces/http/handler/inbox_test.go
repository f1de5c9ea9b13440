package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/infrastructure/transport"
	"github.com/cf1/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupInboxRouter(inbox transport.InboxStore) *gin.Engine {
	h := NewInboxHandler(inbox)
	router := gin.New()
	router.GET("/inbox/:recipientID", h.ListMessages)
	router.GET("/inbox/:recipientID/unread", h.UnreadCount)
	router.POST("/inbox/:recipientID/messages/:messageID/read", h.MarkRead)
	return router
}

func seedInboxMessage(t *testing.T, inbox transport.InboxStore, recipientID uuid.UUID, subject string, createdAt time.Time) transport.InboxMessage {
	t.Helper()
	msg := transport.InboxMessage{
		ID:          uuid.New(),
		RecipientID: recipientID,
		ProposalID:  uuid.New(),
		Subject:     subject,
		Body:        "body",
		Urgency:     notification.UrgencyMedium,
		CreatedAt:   createdAt,
	}
	require.NoError(t, inbox.Put(context.Background(), msg))
	return msg
}

func TestInboxHandler_ListMessagesEmpty(t *testing.T) {
	router := setupInboxRouter(transport.NewInMemoryInbox())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/inbox/"+uuid.New().String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestInboxHandler_ListMessagesNewestFirst(t *testing.T) {
	inbox := transport.NewInMemoryInbox()
	router := setupInboxRouter(inbox)

	recipientID := uuid.New()
	now := time.Now().UTC()
	older := seedInboxMessage(t, inbox, recipientID, "older", now.Add(-time.Hour))
	newer := seedInboxMessage(t, inbox, recipientID, "newer", now)
	seedInboxMessage(t, inbox, uuid.New(), "someone else", now)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/inbox/"+recipientID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var messages []transport.InboxMessage
	require.NoError(t, json.Unmarshal(data, &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, newer.ID, messages[0].ID)
	assert.Equal(t, older.ID, messages[1].ID)
}

func TestInboxHandler_ListMessagesInvalidRecipient(t *testing.T) {
	router := setupInboxRouter(transport.NewInMemoryInbox())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/inbox/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInboxHandler_UnreadCountAndMarkRead(t *testing.T) {
	inbox := transport.NewInMemoryInbox()
	router := setupInboxRouter(inbox)

	recipientID := uuid.New()
	now := time.Now().UTC()
	first := seedInboxMessage(t, inbox, recipientID, "first", now)
	seedInboxMessage(t, inbox, recipientID, "second", now)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/inbox/"+recipientID.String()+"/unread", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var count UnreadCountResponse
	decodeData(t, resp, &count)
	assert.Equal(t, 2, count.Count)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/inbox/"+recipientID.String()+"/messages/"+first.ID.String()+"/read", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/inbox/"+recipientID.String()+"/unread", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	decodeData(t, resp, &count)
	assert.Equal(t, 1, count.Count)
}

func TestInboxHandler_MarkReadUnknownMessage(t *testing.T) {
	router := setupInboxRouter(transport.NewInMemoryInbox())

	// Unknown message IDs are a no-op, not an error
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/inbox/"+uuid.New().String()+"/messages/"+uuid.New().String()+"/read", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestInboxHandler_MarkReadInvalidMessageID(t *testing.T) {
	router := setupInboxRouter(transport.NewInMemoryInbox())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/inbox/"+uuid.New().String()+"/messages/abc/read", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
