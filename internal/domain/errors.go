package domain

import "errors"

var (
	// ErrInvalidInput is returned for unusable arguments, e.g. starting with no questions.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState is returned when an operation is not allowed in the session's current state.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrSourceUnavailable indicates no questions could be produced.
	ErrSourceUnavailable = errors.New("question source unavailable")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
)
