// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/client layers.
var (
	// ErrValidation indicates input rejected before any mutation was attempted.
	ErrValidation = errors.New("validation")

	// ErrNotFound indicates the requested entity does not exist (or no longer exists).
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrTooLarge indicates a request rejected by the transport for its size.
	ErrTooLarge = errors.New("too large")

	// ErrImageAttach indicates the item was created but attaching its image failed.
	ErrImageAttach = errors.New("image attach failed")

	// ErrBackend indicates an auth/network/transaction failure reported by the backend.
	ErrBackend = errors.New("backend error")
)
