package transport

import (
	"testing"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/stretchr/testify/assert"
)

func TestBuildEmailMessage(t *testing.T) {
	msg := string(BuildEmailMessage("noreply@cf1.io", "ada@example.com", "Deadline approaching", "Only 2 days left."))

	assert.Contains(t, msg, "From: noreply@cf1.io\r\n")
	assert.Contains(t, msg, "To: ada@example.com\r\n")
	assert.Contains(t, msg, "Subject: Deadline approaching\r\n")
	assert.Contains(t, msg, "\r\n\r\nOnly 2 days left.")
}

func TestSMTPTransport_Channel(t *testing.T) {
	transport := NewSMTPTransport(SMTPConfig{Host: "smtp.example.com", Port: "465", Username: "noreply@cf1.io"}, nil)
	assert.Equal(t, notification.ChannelEmail, transport.Channel())
	assert.Equal(t, "noreply@cf1.io", transport.config.From)
}
