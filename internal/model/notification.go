package model

import "time"

// Notification is a short-lived status message. It is created by the
// notification board and removed again once its time to live elapses.
type Notification struct {
	// ID uniquely identifies the notification among concurrently active ones.
	// Two notifications with the same message still get different IDs.
	ID string `json:"id"`

	// Message is the human-readable text.
	Message string `json:"message"`

	// Severity selects how the message is rendered.
	Severity Severity `json:"severity"`

	// CreatedAt is when the notification was emitted.
	CreatedAt time.Time `json:"created_at"`
}

// ExpiresAt returns the moment the notification should disappear for the
// given time to live.
func (n Notification) ExpiresAt(ttl time.Duration) time.Time {
	return n.CreatedAt.Add(ttl)
}
