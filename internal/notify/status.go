package notify

import (
	"slices"
	"sync"
)

// StatusLine is a single line of status text with change observers.
type StatusLine struct {
	mu        sync.RWMutex
	text      string
	observers []func(string)
}

// Set replaces the status text and notifies observers.
func (s *StatusLine) Set(text string) {
	s.mu.Lock()
	s.text = text
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o(text)
	}
}

// Get returns the current status text.
func (s *StatusLine) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Observe registers fn for future changes.
func (s *StatusLine) Observe(fn func(string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}
