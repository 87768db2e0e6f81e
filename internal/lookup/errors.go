package lookup

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps every failure to get any HTTP response at all:
	// DNS, connection refused, proxy failure, context cancellation.
	ErrTransport = errors.New("lookup transport failed")

	// ErrInvalidBaseURL is returned by NewClient for an unusable server URL.
	ErrInvalidBaseURL = errors.New("invalid lookup server URL")
)

// HTTPStatusError is returned when the server answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}
