package domain

import "errors"

// Sentinel errors shared across layers. Services map storage and auth
// failures onto these; the HTTP layer maps them onto response codes.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotAnAdmin           = errors.New("not an admin")
	ErrNotLoggedIn          = errors.New("not logged in")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrOperationInProgress  = errors.New("operation already in progress")
	ErrReadFailed           = errors.New("store read failed")
	ErrWriteFailed          = errors.New("store write failed")
)
