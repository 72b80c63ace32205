package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Code failures are distinguishable from ErrUnauthorized because the
	// caller already holds the account id.
	ErrInvalidCode = errors.New("invalid code")
	ErrCodeExpired = errors.New("code expired")

	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)
