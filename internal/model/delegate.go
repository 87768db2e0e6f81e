package model

import (
	"fmt"
	"strings"
	"time"
)

// DelegateID identifies a delegate. It is the key used for deduplication
// and for the lookup request against the server.
type DelegateID string

// String returns the identifier as a plain string.
func (id DelegateID) String() string {
	return string(id)
}

// IsEmpty reports whether the identifier is empty after trimming whitespace.
// Empty identifiers are never looked up.
func (id DelegateID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// FormStatus is the submission state of one of a delegate's paper forms.
type FormStatus string

const (
	// FormSubmitted means the form was handed in.
	FormSubmitted FormStatus = "Submitted"

	// FormPending means the form was handed in but not yet reviewed.
	FormPending FormStatus = "Pending"

	// FormNotSubmitted means the form is missing.
	FormNotSubmitted FormStatus = "Not Submitted"
)

// ParseFormStatus accepts the canonical spelling case-insensitively.
// An empty string is treated as FormNotSubmitted.
func ParseFormStatus(s string) (FormStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "submitted":
		return FormSubmitted, nil
	case "pending":
		return FormPending, nil
	case "not submitted", "", "not_submitted":
		return FormNotSubmitted, nil
	default:
		return "", fmt.Errorf("invalid form status %q", s)
	}
}

// IsSubmitted reports whether the form was handed in.
func (f FormStatus) IsSubmitted() bool {
	return f == FormSubmitted
}

// Delegate is one entry of the conference roster.
type Delegate struct {
	ID            DelegateID `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	Country       string     `json:"country" yaml:"country"`
	Committee     string     `json:"committee" yaml:"committee"`
	Portfolio     string     `json:"portfolio" yaml:"portfolio"`
	LiabilityForm FormStatus `json:"liability_form" yaml:"liability_form"`
	TransportForm FormStatus `json:"transport_form" yaml:"transport_form"`
}

// FormsComplete reports whether both the liability and transport forms
// were submitted.
func (d Delegate) FormsComplete() bool {
	return d.LiabilityForm.IsSubmitted() && d.TransportForm.IsSubmitted()
}

// AttendanceRecord is one check-in stored by the lookup server.
// Only the first check-in of a delegate is recorded.
type AttendanceRecord struct {
	DelegateID DelegateID `json:"delegate_id"`
	ScannedBy  string     `json:"scanned_by"`
	Timestamp  time.Time  `json:"timestamp"`
}
