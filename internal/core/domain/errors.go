package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the tenant token is missing or invalid
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the tenant token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrServiceUnavailable indicates an external AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNoVector indicates the embedding provider returned no vector.
	// This is a degraded outcome, not a failure of the caller's operation.
	ErrNoVector = errors.New("no vector returned")
)
