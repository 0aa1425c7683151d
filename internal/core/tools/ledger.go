package tools

import (
	"context"
	"time"
)

// Entry records one reversible externally-visible action, such as archiving
// a message through the provider. Navigation moves are never ledger entries.
type Entry struct {
	ItemID     string    `json:"item_id"`
	Action     string    `json:"action"`
	Inverse    string    `json:"inverse,omitempty"`
	Reversible bool      `json:"reversible"`
	At         time.Time `json:"at"`
}

// Provider executes the inverse of a previously recorded action against
// the external system that performed it.
type Provider interface {
	Reverse(ctx context.Context, entry Entry) error
}

// Ledger is a fixed-capacity ring of recent actions. When full, recording
// overwrites the oldest entry; only the retained window is undoable.
type Ledger struct {
	entries []Entry
	next    int
	size    int
}

// NewLedger creates a ledger holding at most capacity entries.
// Capacity below 1 is raised to 1.
func NewLedger(capacity int) *Ledger {
	if capacity < 1 {
		capacity = 1
	}
	return &Ledger{entries: make([]Entry, capacity)}
}

// Record appends an action to the ledger.
func (l *Ledger) Record(e Entry) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.size < len(l.entries) {
		l.size++
	}
}

// Len returns the number of retained entries.
func (l *Ledger) Len() int {
	return l.size
}

// Last returns the most recent entry without removing it.
func (l *Ledger) Last() (Entry, bool) {
	if l.size == 0 {
		return Entry{}, false
	}
	idx := (l.next - 1 + len(l.entries)) % len(l.entries)
	return l.entries[idx], true
}

// UndoLast pops the most recent entry and dispatches its inverse through
// the provider. A non-reversible top entry fails without popping, so the
// ledger is left intact for inspection. Provider failure also leaves the
// entry in place so the undo can be retried.
func (l *Ledger) UndoLast(ctx context.Context, provider Provider) (Entry, error) {
	top, ok := l.Last()
	if !ok {
		return Entry{}, ErrLedgerEmpty
	}
	if !top.Reversible {
		return top, ErrNotReversible
	}

	if err := provider.Reverse(ctx, top); err != nil {
		return top, err
	}

	l.next = (l.next - 1 + len(l.entries)) % len(l.entries)
	l.size--
	return top, nil
}
