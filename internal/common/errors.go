// Package common defines shared constants and sentinel errors used across
// the taskkeeper server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors (malformed or missing input).
	ErrValidation = errors.New("validation error")

	// Credential errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRequired      = errors.New("access token required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Renewal errors.
	ErrNoRefreshToken      = errors.New("no refresh token on file")
	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")

	// Ownership errors.
	ErrOwnership = errors.New("username is different")

	// Conflict errors on unique fields.
	ErrEmailTaken      = errors.New("email already registered")
	ErrHandleTaken     = errors.New("username already taken")
	ErrHandleExhausted = errors.New("could not generate a unique username")
	ErrTaskExists      = errors.New("task already exists")
)
