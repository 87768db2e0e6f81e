package resolver

import (
	"sync/atomic"

	"github.com/nao1215/munscan/internal/card"
	"github.com/nao1215/munscan/internal/dedup"
	"github.com/nao1215/munscan/internal/notify"
)

// Session is the mutable state of one station run.
type Session struct {
	// Policy decides which scans are looked up.
	Policy dedup.Policy

	// Cards holds the delegate card currently shown.
	Cards *card.Container

	// Status is the single status line.
	Status *notify.StatusLine

	seq      atomic.Uint64
	inflight atomic.Int64
}

// NewSession creates a Session with an empty card container and status line.
func NewSession(policy dedup.Policy) *Session {
	return &Session{
		Policy: policy,
		Cards:  card.NewContainer(),
		Status: &notify.StatusLine{},
	}
}

// Dispatched returns how many lookups were dispatched so far.
func (s *Session) Dispatched() uint64 {
	return s.seq.Load()
}

// InFlight returns how many lookups have not completed yet.
func (s *Session) InFlight() int64 {
	return s.inflight.Load()
}
