package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appnotification "github.com/cf1/backend/internal/application/notification"
	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func smsMessage(phone string) appnotification.Message {
	return appnotification.Message{
		Recipient:  notification.Recipient{ID: uuid.New(), PhoneNumber: phone},
		Subject:    "Deadline approaching",
		Body:       "Only 2 days left.",
		Urgency:    notification.UrgencyHigh,
		ProposalID: uuid.New(),
		DeliveryID: uuid.New(),
	}
}

func TestSMSTransport_Send(t *testing.T) {
	var gotForm map[string]string
	var gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"mobile":   r.PostFormValue("mobile"),
			"msg":      r.PostFormValue("msg"),
			"senderid": r.PostFormValue("senderid"),
		}
		gotAPIKey = r.Header.Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message_id":"gw-42"}`))
	}))
	defer server.Close()

	transport := NewSMSTransport(SMSConfig{
		BaseURL:  server.URL,
		APIKey:   "test-key",
		SenderID: "CF1",
	}, zap.NewNop())

	id, err := transport.Send(context.Background(), smsMessage("+15550100"))
	require.NoError(t, err)
	assert.Equal(t, "gw-42", id)
	assert.Equal(t, "+15550100", gotForm["mobile"])
	assert.Equal(t, "Only 2 days left.", gotForm["msg"])
	assert.Equal(t, "CF1", gotForm["senderid"])
	assert.Equal(t, "test-key", gotAPIKey)
}

func TestSMSTransport_GatewayErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid mobile"))
	}))
	defer server.Close()

	transport := NewSMSTransport(SMSConfig{BaseURL: server.URL}, zap.NewNop())

	_, err := transport.Send(context.Background(), smsMessage("bad"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mobile")
}

func TestSMSTransport_GatewayRejectsInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","reason":"insufficient credits"}`))
	}))
	defer server.Close()

	transport := NewSMSTransport(SMSConfig{BaseURL: server.URL}, zap.NewNop())

	_, err := transport.Send(context.Background(), smsMessage("+15550100"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient credits")
}

func TestSMSTransport_GeneratesIDWhenGatewayOmitsOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	transport := NewSMSTransport(SMSConfig{BaseURL: server.URL}, zap.NewNop())

	id, err := transport.Send(context.Background(), smsMessage("+15550100"))
	require.NoError(t, err)
	assert.Contains(t, id, "sms-")
}

func TestSMSTransport_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	transport := NewSMSTransport(SMSConfig{BaseURL: server.URL}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := transport.Send(ctx, smsMessage("+15550100"))
	assert.Error(t, err)
}
