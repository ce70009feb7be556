package apperr

import "errors"

// Sentinel kinds. Domain packages wrap these with context so callers can
// branch on errors.Is while the HTTP layer maps them to status codes.
var (
	ErrInvalid  = errors.New("invalid argument")
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
