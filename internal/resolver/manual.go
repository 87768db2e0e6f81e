package resolver

import (
	"context"
	"sync"
)

// ManualEntry is the typed-identifier fallback. Submitted text goes through
// the same Resolver path as a camera scan, and the input is cleared after
// every submission whatever the outcome.
type ManualEntry struct {
	mu       sync.Mutex
	value    string
	resolver *Resolver
}

// NewManualEntry creates a ManualEntry that submits to r.
func NewManualEntry(r *Resolver) *ManualEntry {
	return &ManualEntry{resolver: r}
}

// Set replaces the input text.
func (m *ManualEntry) Set(text string) {
	m.mu.Lock()
	m.value = text
	m.mu.Unlock()
}

// Value returns the current input text.
func (m *ManualEntry) Value() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Submit sends the current input to the resolver and clears it.
func (m *ManualEntry) Submit(ctx context.Context) Outcome {
	m.mu.Lock()
	text := m.value
	m.value = ""
	m.mu.Unlock()

	return m.resolver.Submit(ctx, text)
}
