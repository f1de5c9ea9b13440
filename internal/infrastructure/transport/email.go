package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	appnotification "github.com/cf1/backend/internal/application/notification"
	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SMTPConfig holds SMTP connection settings
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPTransport delivers email over SMTP with implicit TLS. Each Send opens
// a fresh connection; the scheduler's per-channel timeout bounds the whole
// exchange through the context.
type SMTPTransport struct {
	config SMTPConfig
	logger *zap.Logger
}

// NewSMTPTransport creates an SMTP email transport
func NewSMTPTransport(config SMTPConfig, logger *zap.Logger) *SMTPTransport {
	if config.From == "" {
		config.From = config.Username
	}
	return &SMTPTransport{config: config, logger: logger}
}

// Channel returns the channel this transport serves
func (t *SMTPTransport) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send delivers the message to the recipient's email address
func (t *SMTPTransport) Send(ctx context.Context, msg appnotification.Message) (string, error) {
	addr := net.JoinHostPort(t.config.Host, t.config.Port)

	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("smtp dial: %w", err)
	}
	conn := tls.Client(rawConn, &tls.Config{ServerName: t.config.Host})

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return "", fmt.Errorf("smtp deadline: %w", err)
		}
	}

	client, err := smtp.NewClient(conn, t.config.Host)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit()

	if t.config.Username != "" {
		auth := smtp.PlainAuth("", t.config.Username, t.config.Password, t.config.Host)
		if err := client.Auth(auth); err != nil {
			return "", fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(t.config.From); err != nil {
		return "", fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.Recipient.Email); err != nil {
		return "", fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(BuildEmailMessage(t.config.From, msg.Recipient.Email, msg.Subject, msg.Body)); err != nil {
		return "", fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("smtp close: %w", err)
	}

	messageID := fmt.Sprintf("email-%s", uuid.New().String())
	t.logger.Debug("Email sent",
		zap.String("to", msg.Recipient.Email),
		zap.String("message_id", messageID),
	)
	return messageID, nil
}

// BuildEmailMessage assembles the raw RFC 5322 message bytes
func BuildEmailMessage(from, to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\n", from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)
}
