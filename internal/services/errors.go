package services

import "errors"

// Sentinel errors returned by the services. Handlers map them to HTTP status
// codes with errors.Is; wrap them with fmt.Errorf("...: %w", ...) for context.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
)
