package briefing

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	// ErrNoHistory is returned by GoBack when there is nothing to go back to.
	ErrNoHistory = errors.New("no history to go back to")
	// ErrAlreadyPaused is returned by Pause on an already-paused session.
	ErrAlreadyPaused = errors.New("session already paused")
	// ErrNotPaused is returned by Resume on a session that is not paused.
	ErrNotPaused = errors.New("session is not paused")
	// ErrStopped is returned by navigation calls after Stop.
	ErrStopped = errors.New("session stopped")
)

// Tracker drives the forward traversal over the registry: a single cursor,
// a history stack for bounded backward travel, and the paused/stopped flags.
// Like the registry it is single-writer and carries no locking.
type Tracker struct {
	registry *Registry
	cursor   Cursor
	history  *History
	paused   bool
	stopped  bool
	log      zerolog.Logger
}

// NewTracker positions the cursor on the first pending item (or the
// complete sentinel for an empty registry).
func NewTracker(registry *Registry, log zerolog.Logger) *Tracker {
	t := &Tracker{
		registry: registry,
		history:  NewHistory(registry.ItemCount()),
		log:      log.With().Str("component", "tracker").Logger(),
	}
	t.cursor = t.scanFrom(0, 0)
	return t
}

// Cursor returns the current cursor value.
func (t *Tracker) Cursor() Cursor {
	return t.cursor
}

// Complete reports whether the traversal has reached the complete sentinel.
func (t *Tracker) Complete() bool {
	return t.cursor.IsComplete(t.registry.TopicCount())
}

// Paused reports whether the session is paused.
func (t *Tracker) Paused() bool {
	return t.paused
}

// Stopped reports whether Stop has been called.
func (t *Tracker) Stopped() bool {
	return t.stopped
}

// HistoryLen returns the number of back-steps currently available.
func (t *Tracker) HistoryLen() int {
	return t.history.Len()
}

// Current returns the item under the cursor. The second return is false
// when the traversal is complete.
func (t *Tracker) Current() (ItemRef, bool) {
	if t.Complete() {
		return ItemRef{}, false
	}
	return t.registry.ItemAt(t.cursor.TopicIndex, t.cursor.ItemIndex)
}

// Advance handles the current item and moves to the next pending one.
// If the current item is still pending it is marked briefed first: narration
// without an explicit action still counts as handled. The prior cursor is
// pushed to history. Calling Advance while complete is an idempotent no-op.
func (t *Tracker) Advance() (Cursor, error) {
	if t.stopped {
		return t.cursor, ErrStopped
	}
	if t.Complete() {
		return t.cursor, nil
	}

	if ref, ok := t.Current(); ok {
		if state, err := t.registry.Lookup(ref.ID); err == nil && state.Status == StatusPending {
			if _, err := t.registry.MarkBriefed(ref.ID); err != nil {
				return t.cursor, fmt.Errorf("advance: %w", err)
			}
		}
	}

	t.history.Push(t.cursor)
	t.cursor = t.scanFrom(t.cursor.TopicIndex, t.cursor.ItemIndex+1)
	t.logMove("advance")
	return t.cursor, nil
}

// SkipTopic marks every still-pending item in the current topic skipped,
// pushes the prior cursor to history, and moves to the next pending item in
// a later topic. Returns the number of items skipped. Calling SkipTopic
// while complete is an idempotent no-op.
func (t *Tracker) SkipTopic() (Cursor, int, error) {
	if t.stopped {
		return t.cursor, 0, ErrStopped
	}
	if t.Complete() {
		return t.cursor, 0, nil
	}

	topic := t.registry.Topics()[t.cursor.TopicIndex]
	skipped := 0
	for _, ref := range topic.Items {
		state, err := t.registry.Lookup(ref.ID)
		if err != nil {
			return t.cursor, skipped, fmt.Errorf("skip topic: %w", err)
		}
		if state.Status != StatusPending {
			continue
		}
		applied, err := t.registry.MarkSkipped(ref.ID)
		if err != nil {
			return t.cursor, skipped, fmt.Errorf("skip topic: %w", err)
		}
		if applied {
			skipped++
		}
	}

	t.history.Push(t.cursor)
	t.cursor = t.scanFrom(t.cursor.TopicIndex+1, 0)
	t.logMove("skip_topic")
	return t.cursor, skipped, nil
}

// GoBack pops the given number of history entries and restores the cursor
// to the last one popped. Pure position undo: no status changes. The call
// is all-or-nothing; if fewer entries than steps are available it fails
// with ErrNoHistory and nothing is mutated.
func (t *Tracker) GoBack(steps int) (Cursor, error) {
	if t.stopped {
		return t.cursor, ErrStopped
	}
	if steps < 1 {
		steps = 1
	}
	if t.history.Len() < steps {
		return t.cursor, fmt.Errorf("go back %d: %w", steps, ErrNoHistory)
	}

	for range steps {
		prior, _ := t.history.Pop()
		t.cursor = prior
	}
	t.logMove("go_back")
	return t.cursor, nil
}

// Pause marks the session paused. Pausing twice is a reported failure.
func (t *Tracker) Pause() error {
	if t.stopped {
		return ErrStopped
	}
	if t.paused {
		return ErrAlreadyPaused
	}
	t.paused = true
	return nil
}

// Resume clears the paused flag. Resuming a non-paused session is a
// reported failure.
func (t *Tracker) Resume() error {
	if t.stopped {
		return ErrStopped
	}
	if !t.paused {
		return ErrNotPaused
	}
	t.paused = false
	return nil
}

// Stop ends forward dispatch for the session. Registry state is untouched;
// the caller is responsible for flushing persistence. Stop is idempotent.
func (t *Tracker) Stop() {
	t.stopped = true
}

// Rescan repositions the cursor onto the earliest pending item after a
// merge. wasComplete must be captured before the merge mutates the
// registry: appending a topic turns the complete sentinel into a live
// position, so completeness cannot be re-derived here. A cursor that was
// mid-traversal is left alone so forward-only motion is preserved.
func (t *Tracker) Rescan(wasComplete bool) Cursor {
	if wasComplete {
		t.cursor = t.scanFrom(0, 0)
	}
	return t.cursor
}

// scanFrom returns the lowest (topicIndex, itemIndex) at or after the given
// position whose item is still pending, or the complete sentinel. Empty
// topics and terminal items fall through the scan with no special casing.
func (t *Tracker) scanFrom(topicIndex, itemIndex int) Cursor {
	topics := t.registry.Topics()
	for ti := topicIndex; ti < len(topics); ti++ {
		start := 0
		if ti == topicIndex {
			start = itemIndex
		}
		for ii := start; ii < len(topics[ti].Items); ii++ {
			state, ok := t.registry.StateAt(ti, ii)
			if ok && state.Status == StatusPending {
				return Cursor{TopicIndex: ti, ItemIndex: ii}
			}
		}
	}
	return CompleteCursor(len(topics))
}

func (t *Tracker) logMove(op string) {
	t.log.Debug().
		Str("op", op).
		Int("topic", t.cursor.TopicIndex).
		Int("item", t.cursor.ItemIndex).
		Bool("complete", t.Complete()).
		Msg("cursor moved")
}
