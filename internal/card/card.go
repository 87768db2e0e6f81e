// Package card holds the delegate card currently shown at a station.
//
// A Container holds at most one card. Replacing the card swaps it in a
// single step, so readers never observe zero or two cards during an update.
package card

import (
	"strings"
	"sync"
	"time"

	"github.com/nao1215/munscan/internal/model"
)

// Card is one server-rendered delegate card.
type Card struct {
	// DelegateID is the delegate the card was looked up for.
	DelegateID model.DelegateID

	// HTML is the outer HTML of the card element.
	HTML string

	// Seq is the dispatch sequence number of the lookup that produced the card.
	Seq uint64

	// UpdatedAt is when the card was placed in the container.
	UpdatedAt time.Time
}

// Observer is notified after every replacement.
type Observer func(Card)

// Container is the single-card slot of a station. The zero value is an
// empty container ready for use.
type Container struct {
	mu        sync.RWMutex
	current   *Card
	observers []Observer
	now       func() time.Time
}

// NewContainer creates an empty Container.
func NewContainer() *Container {
	return &Container{now: time.Now}
}

// Replace installs c as the current card, inserting it when the container
// is empty. Observers are called after the swap, outside the lock.
func (k *Container) Replace(c Card) {
	k.mu.Lock()
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = k.clock()
	}
	k.current = &c
	observers := append([]Observer(nil), k.observers...)
	k.mu.Unlock()

	for _, o := range observers {
		o(c)
	}
}

// ReplaceIfNewer installs c only when no card is shown or the shown card
// has a lower sequence number. It reports whether c was installed.
func (k *Container) ReplaceIfNewer(c Card) bool {
	k.mu.Lock()
	if k.current != nil && k.current.Seq > c.Seq {
		k.mu.Unlock()
		return false
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = k.clock()
	}
	k.current = &c
	observers := append([]Observer(nil), k.observers...)
	k.mu.Unlock()

	for _, o := range observers {
		o(c)
	}
	return true
}

// Current returns the shown card and whether there is one.
func (k *Container) Current() (Card, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.current == nil {
		return Card{}, false
	}
	return *k.current, true
}

// Len returns the number of shown cards, which is always 0 or 1.
func (k *Container) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.current == nil {
		return 0
	}
	return 1
}

// Observe registers o for future replacements.
func (k *Container) Observe(o Observer) {
	if o == nil {
		return
	}
	k.mu.Lock()
	k.observers = append(k.observers, o)
	k.mu.Unlock()
}

// Text renders the shown card as plain text, or "" when empty.
func (k *Container) Text() string {
	c, ok := k.Current()
	if !ok {
		return ""
	}
	return strings.TrimSpace(Text(c.HTML))
}

func (k *Container) clock() time.Time {
	if k.now == nil {
		return time.Now()
	}
	return k.now()
}
