package model

import (
	"fmt"
	"strings"
)

// Severity is the class of a notification shown to the operator.
type Severity int

const (
	// SeveritySuccess reports a completed check-in.
	SeveritySuccess Severity = iota

	// SeverityWarning reports a delegate that was already processed,
	// either by the server or by the session deduplication policy.
	SeverityWarning

	// SeverityError reports a failed lookup, a missing card or a camera
	// that could not be opened.
	SeverityError
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name back into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return SeveritySuccess, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so severities serialize by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
