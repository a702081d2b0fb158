// Package common defines shared constants and sentinel errors used across
// the notesauth server and its admin client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// ErrConfiguration marks a deployment problem (missing default role,
	// missing or unusable signing key). It is never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidAssertion is returned when the identity provider integration
	// hands over an assertion without the fields the login flow needs.
	ErrInvalidAssertion = errors.New("invalid identity assertion")

	// ErrAccountConflict is returned when an account insert collides with a
	// row that belongs to a different email (username taken).
	ErrAccountConflict = errors.New("account conflict")

	// ErrStoreUnavailable wraps durable-store timeouts and connection failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenAlreadyUsed = errors.New("token already used")

	// ErrCleanupInProgress is returned when a cleanup trigger arrives while
	// another cleanup run holds the lock.
	ErrCleanupInProgress = errors.New("token cleanup already in progress")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
)
