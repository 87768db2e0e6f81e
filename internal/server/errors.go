package server

import "errors"

// ErrNoRoster is returned by New without a roster.
var ErrNoRoster = errors.New("roster is required")
