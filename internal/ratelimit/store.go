package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per client within a fixed window. Implementations
// must be safe for concurrent use.
type Store interface {
	// Increment bumps the counter for key and returns the new count.
	// The counter expires after window has elapsed since its first hit.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)

	// Reset clears the counter for key
	Reset(ctx context.Context, key string) error

	Close() error
}
