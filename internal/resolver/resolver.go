package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/munscan/internal/card"
	"github.com/nao1215/munscan/internal/dedup"
	"github.com/nao1215/munscan/internal/lookup"
	"github.com/nao1215/munscan/internal/model"
	"github.com/nao1215/munscan/internal/payload"
)

// StatusReady is shown when no lookup is in flight.
const StatusReady = "Ready to scan"

// Order selects which card wins when lookups overlap.
type Order int

const (
	// OrderCompletion keeps the card of the lookup that completed last.
	OrderCompletion Order = iota
	// OrderDispatch keeps the card of the lookup that was dispatched last.
	OrderDispatch
)

// ParseOrder converts a configuration value into an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "completion", "":
		return OrderCompletion, nil
	case "dispatch":
		return OrderDispatch, nil
	default:
		return 0, fmt.Errorf("unknown card order %q", s)
	}
}

// Outcome is what Submit did with a payload.
type Outcome int

const (
	// Rejected means the payload carried no identifier.
	Rejected Outcome = iota
	// Suppressed means the deduplication policy silently dropped the scan.
	Suppressed
	// Duplicate means the scan was dropped with an "already scanned" warning.
	Duplicate
	// Dispatched means a lookup was started.
	Dispatched
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Suppressed:
		return "suppressed"
	case Duplicate:
		return "duplicate"
	case Dispatched:
		return "dispatched"
	default:
		return "unknown"
	}
}

// Looker fetches the lookup result for a delegate. *lookup.Client
// implements it.
type Looker interface {
	Lookup(ctx context.Context, id model.DelegateID) (lookup.Result, error)
}

// Notifier receives the one notification emitted per completed
// submission. *notify.Board implements it.
type Notifier interface {
	Emit(message string, severity model.Severity) model.Notification
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOrder sets the card ordering mode.
func WithOrder(o Order) Option {
	return func(r *Resolver) { r.order = o }
}

// WithClock replaces time.Now for deduplication decisions.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// Resolver runs the delegate resolution workflow.
type Resolver struct {
	session  *Session
	looker   Looker
	notifier Notifier
	order    Order
	now      func() time.Time
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New creates a Resolver. A nil session gets a window policy session with
// a three second window.
func New(looker Looker, notifier Notifier, session *Session, opts ...Option) *Resolver {
	if session == nil {
		session = NewSession(dedup.NewWindowPolicy(3 * time.Second))
	}
	r := &Resolver{
		session:  session,
		looker:   looker,
		notifier: notifier,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the state owned by the resolver.
func (r *Resolver) Session() *Session {
	return r.session
}

// Submit handles one decoded payload. It returns as soon as the lookup is
// dispatched and never blocks on the network.
func (r *Resolver) Submit(ctx context.Context, raw string) Outcome {
	id := payload.ExtractID(raw)
	if id.IsEmpty() {
		r.logger.Debug("empty identifier ignored")
		return Rejected
	}

	r.logger.Debug("payload decoded", "delegate", id.String(), "scanPath", payload.HasScanPath(raw))

	switch r.session.Policy.Admit(id, r.now()) {
	case dedup.Suppressed:
		r.logger.Debug("repeat scan suppressed", "delegate", id.String())
		return Suppressed
	case dedup.AlreadyScanned:
		r.notifier.Emit(id.String()+" already scanned", model.SeverityWarning)
		return Duplicate
	}

	seq := r.session.seq.Add(1)
	r.session.inflight.Add(1)
	r.session.Status.Set("Looking up " + id.String() + "…")

	r.wg.Add(1)
	go r.resolve(ctx, id, seq)
	return Dispatched
}

// Wait blocks until every dispatched lookup has completed.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

func (r *Resolver) resolve(ctx context.Context, id model.DelegateID, seq uint64) {
	defer r.wg.Done()
	defer func() {
		if r.session.inflight.Add(-1) == 0 {
			r.session.Status.Set(StatusReady)
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("lookup panicked", "delegate", id.String(), "panic", fmt.Sprint(p))
			r.notifier.Emit("Lookup failed for "+id.String(), model.SeverityError)
		}
	}()

	res, err := r.looker.Lookup(ctx, id)
	if err != nil {
		r.logger.Warn("lookup failed", "delegate", id.String(), "error", err)
		if f, ok := r.session.Policy.(dedup.Forgetter); ok {
			f.Forget(id)
		}
		r.notifier.Emit(failureMessage(id, err), model.SeverityError)
		return
	}

	if res.HasCard() {
		c := card.Card{DelegateID: id, HTML: res.CardHTML, Seq: seq}
		switch r.order {
		case OrderDispatch:
			if !r.session.Cards.ReplaceIfNewer(c) {
				r.logger.Debug("stale card skipped", "delegate", id.String(), "seq", seq)
			}
		default:
			r.session.Cards.Replace(c)
		}
	} else {
		r.logger.Debug("response without card", "delegate", id.String())
	}

	r.notifier.Emit(res.Message, res.Severity())
}

func failureMessage(id model.DelegateID, err error) string {
	var statusErr *lookup.HTTPStatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Lookup failed for %s (HTTP %d)", id, statusErr.StatusCode)
	case errors.Is(err, context.Canceled):
		return fmt.Sprintf("Lookup cancelled for %s", id)
	case errors.Is(err, lookup.ErrTransport):
		return fmt.Sprintf("Lookup failed for %s (server unreachable)", id)
	default:
		return fmt.Sprintf("Lookup failed for %s", id)
	}
}
