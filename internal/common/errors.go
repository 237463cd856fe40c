// Package common defines shared constants and sentinel errors used across
// the catalog server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorInvalidCredentials is the single error returned for an unknown
	// email and for a wrong password.
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Validation / write errors.
	ErrorValidation       = errors.New("validation error")
	ErrorCategoryNotEmpty = errors.New("category has products")
	ErrorConflict         = errors.New("already exists")

	// Upload errors.
	ErrorUnsupportedMedia = errors.New("unsupported media type")
	ErrorTooLarge         = errors.New("file too large")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)
