package roster

import "errors"

var (
	// ErrDelegateNotFound is returned by Get for an unknown identifier.
	ErrDelegateNotFound = errors.New("delegate not found")

	// ErrInvalidRoster is returned when a roster file cannot be parsed or
	// an entry is incomplete.
	ErrInvalidRoster = errors.New("invalid roster")
)
