package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appnotification "github.com/cf1/backend/internal/application/notification"
	"github.com/cf1/backend/internal/domain/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SMSConfig holds the SMS gateway settings
type SMSConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

// SMSTransport delivers SMS through a form-POST HTTP gateway
type SMSTransport struct {
	config SMSConfig
	client *http.Client
	logger *zap.Logger
}

// NewSMSTransport creates an SMS transport with a bounded HTTP client
func NewSMSTransport(config SMSConfig, logger *zap.Logger) *SMSTransport {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SMSTransport{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Channel returns the channel this transport serves
func (t *SMSTransport) Channel() notification.Channel {
	return notification.ChannelSMS
}

// smsResponse is the gateway's JSON reply; MessageID may be absent on
// gateways that only acknowledge
type smsResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
}

// Send posts the message body to the gateway for the recipient's phone number
func (t *SMSTransport) Send(ctx context.Context, msg appnotification.Message) (string, error) {
	form := url.Values{}
	form.Set("senderid", t.config.SenderID)
	form.Set("msgType", "text")
	form.Set("msg", msg.Body)
	form.Set("mobile", msg.Recipient.PhoneNumber)
	form.Set("output", "json")

	endpoint := strings.TrimRight(t.config.BaseURL, "/") + "/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if t.config.APIKey != "" {
		req.Header.Set("apikey", t.config.APIKey)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms http: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.logger.Warn("SMS gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(body)),
		)
		return "", fmt.Errorf("sms gateway error: %s", strings.TrimSpace(string(body)))
	}

	var parsed smsResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Status != "" && !strings.EqualFold(parsed.Status, "success") {
		return "", fmt.Errorf("sms gateway error: %s", parsed.Reason)
	}

	messageID := parsed.MessageID
	if messageID == "" {
		messageID = fmt.Sprintf("sms-%s", uuid.New().String())
	}

	t.logger.Debug("SMS sent",
		zap.String("mobile", msg.Recipient.PhoneNumber),
		zap.String("message_id", messageID),
		zap.Duration("duration", time.Since(start)),
	)
	return messageID, nil
}
