package service

import "errors"

var (
	// ErrValidation signals malformed or missing request fields.  It is a
	// business error: it never triggers a store fallback and no record is
	// written anywhere.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden signals the acting identity may not perform the
	// requested operation on this booking.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials signals a rejected email or password on
	// whichever verification path ran.  It is never converted into a
	// retry or a fallback grant.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrSessionExpired signals an unknown, expired or revoked refresh
	// token.
	ErrSessionExpired = errors.New("auth: session expired")
)
