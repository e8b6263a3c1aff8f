package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a question round has not been started.
	ErrSessionNotFound = errors.New("question session not found")
)
