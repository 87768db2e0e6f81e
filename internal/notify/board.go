package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/munscan/internal/model"
)

// DefaultTTL is how long a notification stays on the board.
const DefaultTTL = 3 * time.Second

// EventKind says what happened to a notification.
type EventKind int

const (
	// Added is sent when a notification is emitted.
	Added EventKind = iota
	// Removed is sent when a notification expires.
	Removed
)

// Event is delivered to board subscribers.
type Event struct {
	Kind         EventKind
	Notification model.Notification
}

// Scheduler runs f once after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (cancel func() bool)

func timeScheduler(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger for the board.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithScheduler replaces time.AfterFunc, which lets tests expire
// notifications deterministically.
func WithScheduler(s Scheduler) Option {
	return func(b *Board) {
		if s != nil {
			b.schedule = s
		}
	}
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// Board holds the active notifications. It is safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	ttl      time.Duration
	active   []model.Notification
	cancels  map[string]func() bool
	subs     map[int]func(Event)
	nextSub  int
	closed   bool
	schedule Scheduler
	now      func() time.Time
	logger   *slog.Logger
}

// NewBoard creates a Board whose notifications expire after ttl.
// A non-positive ttl uses DefaultTTL.
func NewBoard(ttl time.Duration, opts ...Option) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b := &Board{
		ttl:      ttl,
		cancels:  make(map[string]func() bool),
		subs:     make(map[int]func(Event)),
		schedule: timeScheduler,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TTL returns the notification lifetime.
func (b *Board) TTL() time.Duration {
	return b.ttl
}

// Emit appends a notification and schedules its removal.
func (b *Board) Emit(message string, severity model.Severity) model.Notification {
	n := model.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: b.now(),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return n
	}
	b.active = append(b.active, n)
	b.cancels[n.ID] = b.schedule(b.ttl, func() { b.remove(n.ID) })
	subs := b.subscribers()
	b.mu.Unlock()

	b.logger.Debug("notification", "severity", severity.String(), "message", message)
	for _, fn := range subs {
		fn(Event{Kind: Added, Notification: n})
	}
	return n
}

// Active returns the visible notifications in emission order.
func (b *Board) Active() []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Notification(nil), b.active...)
}

// Len returns the number of visible notifications.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}

// Subscribe registers fn for Added and Removed events and returns a
// function that unregisters it. fn is called outside the board lock.
func (b *Board) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Close cancels pending removals and drops every notification.
// Emit on a closed board is a no-op.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = make(map[string]func() bool)
	b.active = nil
	b.closed = true
}

func (b *Board) remove(id string) {
	b.mu.Lock()
	idx := -1
	for i, n := range b.active {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return
	}
	n := b.active[idx]
	b.active = append(b.active[:idx], b.active[idx+1:]...)
	delete(b.cancels, id)
	subs := b.subscribers()
	b.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Kind: Removed, Notification: n})
	}
}

// subscribers must be called with b.mu held.
func (b *Board) subscribers() []func(Event) {
	out := make([]func(Event), 0, len(b.subs))
	for i := 0; i < b.nextSub; i++ {
		if fn, ok := b.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
