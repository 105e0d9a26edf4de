package service

import "errors"

// Service errors. Handlers map them to HTTP statuses with errors.Is.
var (
	// ErrNotFound indicates that the requested entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates that the caller may not modify the entity
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized indicates missing, invalid or revoked credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a uniqueness violation
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates a request that failed validation
	ErrInvalidInput = errors.New("invalid input")
)

// Identity is the authenticated caller as resolved from an access token
type Identity struct {
	Email  string
	UserID int64
}
