package services

import "errors"

// Sentinel errors handlers translate into HTTP responses. Wrapped with %w so
// callers match them via errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyCompleted   = errors.New("campaign already completed")
	ErrTransactionTimeout = errors.New("distribution transaction timed out")
)
