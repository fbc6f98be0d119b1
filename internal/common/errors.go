// Package common defines shared sentinel errors and small helpers used
// across gatehouse layers. Callers should use errors.Is to match the
// sentinels and errors.As for *ValidationError.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email is already taken")

	// Service-level errors (generic/internal flow control).
	ErrInternal    = errors.New("internal error")
	ErrRateLimited = errors.New("too many attempts")

	// ErrInvalidCredentials is the single error for every login failure.
	// An unknown email and a wrong password are indistinguishable to the
	// caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenInvalid is the single error for every remember-token failure:
	// unknown token, wrong secret, expired, revoked, or dangling user.
	ErrTokenInvalid = errors.New("invalid remember token")

	// ErrUnauthenticated signals that an operation requires an
	// authenticated user. The HTTP layer decides how to respond.
	ErrUnauthenticated = errors.New("authentication required")
)
