package notification

import "errors"

var (
	// ErrNoTransport is returned when a channel has no registered transport
	ErrNoTransport = errors.New("no transport registered for channel")

	// ErrRecipientUnknown is returned when a resend cannot locate the original recipient
	ErrRecipientUnknown = errors.New("recipient is no longer a candidate for this proposal")
)
