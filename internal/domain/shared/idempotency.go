package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so redelivered events are
// dropped instead of handled twice.
type IdempotencyStore interface {
	// MarkProcessed records an event ID with a TTL. It returns true when the
	// event was newly marked and false when it had already been processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether an event ID has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases any resources held by the store
	Close() error
}

// IdempotencyConfig holds configuration for duplicate suppression
type IdempotencyConfig struct {
	// TTL is how long a processed event ID is remembered. After it expires
	// the same event ID may be processed again.
	TTL time.Duration

	// Enabled toggles duplicate suppression entirely
	Enabled bool
}

// DefaultIdempotencyConfig returns a 24 hour TTL with suppression enabled
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
