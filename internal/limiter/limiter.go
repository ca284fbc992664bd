// Package limiter throttles repeated failed sign-in attempts.
package limiter

import (
	"context"
	"time"
)

// Limiter tracks failed sign-ins per (email, client) pair.
type Limiter interface {
	// Allow reports whether a sign-in may be attempted now and, if not, how long to wait.
	Allow(ctx context.Context, email string, client []byte) (bool, time.Duration, error)
	// Success clears the failure history.
	Success(ctx context.Context, email string, client []byte) error
	// Failure records a failed attempt and reports whether the pair is now blocked.
	Failure(ctx context.Context, email string, client []byte) (bool, time.Duration, error)
}

// Policy configures the sliding window.
type Policy struct {
	Window   time.Duration
	MaxFails int
	BlockFor time.Duration
}

// DefaultPolicy allows five failures per fifteen minutes.
func DefaultPolicy() Policy {
	return Policy{Window: 15 * time.Minute, MaxFails: 5, BlockFor: 15 * time.Minute}
}
