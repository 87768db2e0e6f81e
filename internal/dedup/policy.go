package dedup

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/munscan/internal/model"
)

// Policy names accepted by New and by the configuration file.
const (
	// NameWindow selects WindowPolicy.
	NameWindow = "window"

	// NameSession selects SessionPolicy.
	NameSession = "session"
)

// Decision is the outcome of Policy.Admit.
type Decision int

const (
	// Admitted means the identifier must be looked up.
	Admitted Decision = iota

	// Suppressed means the identifier is dropped without any feedback.
	Suppressed

	// AlreadyScanned means the identifier is dropped and the operator
	// must be told that the delegate was already scanned.
	AlreadyScanned
)

// String returns a short name for the decision.
func (d Decision) String() string {
	switch d {
	case Admitted:
		return "admitted"
	case Suppressed:
		return "suppressed"
	case AlreadyScanned:
		return "already_scanned"
	default:
		return "unknown"
	}
}

// Policy decides whether a scan of id at time now should be looked up.
// Admit records the scan when it returns Admitted.
type Policy interface {
	Admit(id model.DelegateID, now time.Time) Decision
	// Name returns the policy name as used in configuration.
	Name() string
}

// Forgetter is implemented by policies that can take back an admission,
// so that an identifier whose lookup failed is looked up again on the
// next scan.
type Forgetter interface {
	Forget(id model.DelegateID)
}

// New returns the policy registered under name. The window argument is
// only used by the window policy.
func New(name string, window time.Duration) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameWindow, "":
		return NewWindowPolicy(window), nil
	case NameSession:
		return NewSessionPolicy(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// WindowPolicy suppresses a repeat of the last admitted identifier while
// the cool-down window is open.
type WindowPolicy struct {
	mu     sync.Mutex
	window time.Duration
	lastID model.DelegateID
	lastAt time.Time
	seen   bool
}

// NewWindowPolicy creates a WindowPolicy with the given cool-down window.
func NewWindowPolicy(window time.Duration) *WindowPolicy {
	return &WindowPolicy{window: window}
}

// Name implements Policy.
func (p *WindowPolicy) Name() string {
	return NameWindow
}

// Window returns the configured cool-down window.
func (p *WindowPolicy) Window() time.Duration {
	return p.window
}

// Admit implements Policy. Only admitted scans refresh the remembered
// identifier and timestamp, so holding a badge in front of the camera does
// not extend the window forever.
func (p *WindowPolicy) Admit(id model.DelegateID, now time.Time) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen && id == p.lastID && now.Sub(p.lastAt) < p.window {
		return Suppressed
	}
	p.lastID = id
	p.lastAt = now
	p.seen = true
	return Admitted
}

// SessionPolicy admits every identifier exactly once.
type SessionPolicy struct {
	mu   sync.Mutex
	seen map[model.DelegateID]struct{}
}

// NewSessionPolicy creates an empty SessionPolicy.
func NewSessionPolicy() *SessionPolicy {
	return &SessionPolicy{seen: make(map[model.DelegateID]struct{})}
}

// Name implements Policy.
func (p *SessionPolicy) Name() string {
	return NameSession
}

// Admit implements Policy.
func (p *SessionPolicy) Admit(id model.DelegateID, _ time.Time) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.seen[id]; ok {
		return AlreadyScanned
	}
	p.seen[id] = struct{}{}
	return Admitted
}

// Forget removes id from the seen set.
func (p *SessionPolicy) Forget(id model.DelegateID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, id)
}

// Len returns the number of distinct identifiers seen so far.
func (p *SessionPolicy) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}
