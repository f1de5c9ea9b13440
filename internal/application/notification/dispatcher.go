package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/domain/proposal"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// smsMaxLength is the single-segment SMS body limit; longer bodies are
// truncated with a trailing ellipsis.
const smsMaxLength = 160

// Message is one rendered notification bound for a single channel
type Message struct {
	Recipient  notification.Recipient
	Subject    string
	Body       string
	Urgency    notification.Urgency
	ProposalID uuid.UUID
	DeliveryID uuid.UUID
}

// Transport sends a rendered message over one channel. Implementations live
// in the infrastructure layer; the dispatcher only sees this interface.
type Transport interface {
	// Channel returns the channel this transport serves
	Channel() notification.Channel
	// Send delivers the message and returns a provider message ID
	Send(ctx context.Context, msg Message) (string, error)
}

// TransportRegistry maps channels to their transports
type TransportRegistry struct {
	transports map[notification.Channel]Transport
}

// NewTransportRegistry creates a registry from the given transports
func NewTransportRegistry(transports ...Transport) *TransportRegistry {
	r := &TransportRegistry{transports: make(map[notification.Channel]Transport, len(transports))}
	for _, t := range transports {
		r.transports[t.Channel()] = t
	}
	return r
}

// Get returns the transport for a channel
func (r *TransportRegistry) Get(c notification.Channel) (Transport, bool) {
	t, ok := r.transports[c]
	return t, ok
}

// DispatcherConfig holds dispatcher tuning
type DispatcherConfig struct {
	// SendTimeout bounds each individual channel send; a send that does
	// not return within it becomes a failed channel result
	SendTimeout time.Duration
}

// DefaultDispatcherConfig returns default dispatcher configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{SendTimeout: 10 * time.Second}
}

// Dispatcher attempts delivery of one (trigger, proposal, recipient) tuple
// across each requested channel, producing one outcome record per channel.
// Channel sends within a record fan out concurrently and all complete, or
// definitively fail, before the record is finalized.
type Dispatcher struct {
	transports *TransportRegistry
	config     DispatcherConfig
	logger     *zap.Logger
	nowFn      func() time.Time
}

// NewDispatcher creates a dispatcher
func NewDispatcher(transports *TransportRegistry, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultDispatcherConfig().SendTimeout
	}
	return &Dispatcher{
		transports: transports,
		config:     config,
		logger:     logger,
		nowFn:      time.Now,
	}
}

// Dispatch renders the trigger's template for the recipient and attempts
// every channel in the trigger's channel order. Missing contact info fails
// that channel but never aborts the remaining ones. The entry's attempt
// count increments once per channel attempt.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	trigger *notification.Trigger,
	entry *notification.ScheduledEntry,
	prop *proposal.Proposal,
	recipient notification.Recipient,
) *notification.DeliveryRecord {
	renderCtx := notification.NewRenderContext(prop, recipient, d.nowFn())
	subject := renderCtx.Render(trigger.Template.Subject)
	body := renderCtx.Render(trigger.Template.Body)

	record := notification.NewDeliveryRecord(trigger.ID, entry.ProposalID, recipient.ID, entry.ScheduledFor)

	channels := trigger.Template.Channels
	results := make([]notification.ChannelResult, len(channels))

	var wg sync.WaitGroup
	for i, channel := range channels {
		wg.Add(1)
		go func(i int, channel notification.Channel) {
			defer wg.Done()
			results[i] = d.attempt(ctx, channel, Message{
				Recipient:  recipient,
				Subject:    subject,
				Body:       body,
				Urgency:    trigger.Template.Urgency,
				ProposalID: entry.ProposalID,
				DeliveryID: record.ID,
			})
		}(i, channel)
	}
	wg.Wait()

	for _, result := range results {
		record.AddResult(result)
	}
	entry.AttemptCount += len(channels)

	record.Finalize(d.nowFn())

	d.logger.Debug("delivery dispatched",
		zap.String("delivery_id", record.ID.String()),
		zap.String("recipient_id", recipient.ID.String()),
		zap.String("status", string(record.Status)),
		zap.Int("channels", len(channels)),
	)

	return record
}

// attempt performs a single channel attempt. Transport errors are caught
// here and converted to failed channel results with the error preserved;
// they never propagate up the call stack.
func (d *Dispatcher) attempt(ctx context.Context, channel notification.Channel, msg Message) notification.ChannelResult {
	result := notification.ChannelResult{Channel: channel}

	switch channel {
	case notification.ChannelEmail:
		if !msg.Recipient.HasEmail() {
			return d.fail(result, "No email address available")
		}
	case notification.ChannelSMS:
		if !msg.Recipient.HasPhone() {
			return d.fail(result, "No phone number available")
		}
		msg.Body = TruncateSMS(msg.Body)
	}

	transport, ok := d.transports.Get(channel)
	if !ok {
		return d.fail(result, ErrNoTransport.Error())
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	defer cancel()

	messageID, err := transport.Send(sendCtx, msg)
	result.Timestamp = d.nowFn()
	if err != nil {
		result.Error = err.Error()
		d.logger.Warn("channel send failed",
			zap.String("channel", string(channel)),
			zap.String("delivery_id", msg.DeliveryID.String()),
			zap.Error(err),
		)
		return result
	}

	result.Success = true
	result.MessageID = messageID
	return result
}

func (d *Dispatcher) fail(result notification.ChannelResult, reason string) notification.ChannelResult {
	result.Success = false
	result.Error = reason
	result.Timestamp = d.nowFn()
	return result
}

// TruncateSMS shortens a body to the single-segment SMS limit, replacing
// the last three characters of the truncated text with an ellipsis when
// truncation occurs.
func TruncateSMS(body string) string {
	runes := []rune(body)
	if len(runes) <= smsMaxLength {
		return body
	}
	return string(runes[:smsMaxLength-3]) + "..."
}
