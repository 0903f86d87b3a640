package shared

import (
	"context"
	"time"
)

// StoredResponse is a previously produced HTTP response kept for replay
type StoredResponse struct {
	StatusCode  int    `msgpack:"status"`
	ContentType string `msgpack:"content_type"`
	Body        []byte `msgpack:"body"`
}

// IdempotencyStore records the outcome of requests carrying an idempotency key
type IdempotencyStore interface {
	// Reserve claims key for an in-flight request.
	// Returns false if the key is already reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the response for a reserved key
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error

	// Lookup returns the stored response for key. ok is false when the key
	// is unknown or still in flight.
	Lookup(ctx context.Context, key string) (resp *StoredResponse, ok bool, err error)

	// Release frees a reserved key so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a completed response is replayed.
	// Default: 24 hours
	TTL time.Duration

	// InFlightTTL bounds how long a reservation outlives a crashed request.
	// Default: 1 minute
	InFlightTTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:         24 * time.Hour,
		InFlightTTL: time.Minute,
		Enabled:     true,
	}
}
