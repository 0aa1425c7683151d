package briefing

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrUnknownItem is returned when a mutation targets an item id that
	// was never registered. Callers should treat the session as possibly
	// desynchronized from its data source, not crash.
	ErrUnknownItem = errors.New("unknown item id")
)

// ChangeFunc observes committed status changes. Used by the service layer
// to enqueue persistence writes and engagement signals. Observers run
// synchronously after the in-memory mutation has taken effect.
type ChangeFunc func(state ItemState)

// Registry owns the topic list and the id-indexed lifecycle records.
// It is driven by one sequential command stream per session, so it carries
// no locking of its own.
type Registry struct {
	topics []Topic
	states map[string]*ItemState
	counts map[Status]int

	onChange ChangeFunc
	log      zerolog.Logger
	now      func() time.Time
}

// NewRegistry builds the id→ItemState index for the given topics in one
// pass, assigning (topicIndex, itemIndex) by list position.
func NewRegistry(topics []Topic, log zerolog.Logger) *Registry {
	r := &Registry{
		states: make(map[string]*ItemState),
		counts: make(map[Status]int),
		log:    log.With().Str("component", "registry").Logger(),
		now:    time.Now,
	}
	r.AddTopics(topics)
	return r
}

// OnChange registers the observer for committed status changes.
// Only one observer is supported; later calls replace earlier ones.
func (r *Registry) OnChange(fn ChangeFunc) {
	r.onChange = fn
}

// Topics returns the live topic list. Callers must treat it as read-only.
func (r *Registry) Topics() []Topic {
	return r.topics
}

// TopicCount returns the number of topics.
func (r *Registry) TopicCount() int {
	return len(r.topics)
}

// ItemCount returns the total number of registered items.
func (r *Registry) ItemCount() int {
	return len(r.states)
}

// StatusCount returns how many items currently hold the given status.
func (r *Registry) StatusCount(s Status) int {
	return r.counts[s]
}

// Lookup returns the lifecycle record for an item id.
// Returns ErrUnknownItem if the id was never registered.
func (r *Registry) Lookup(itemID string) (ItemState, error) {
	state, ok := r.states[itemID]
	if !ok {
		return ItemState{}, fmt.Errorf("lookup %q: %w", itemID, ErrUnknownItem)
	}
	return *state, nil
}

// ItemAt returns the immutable item reference at the given position.
// The second return is false when the position is out of range.
func (r *Registry) ItemAt(topicIndex, itemIndex int) (ItemRef, bool) {
	if topicIndex < 0 || topicIndex >= len(r.topics) {
		return ItemRef{}, false
	}
	items := r.topics[topicIndex].Items
	if itemIndex < 0 || itemIndex >= len(items) {
		return ItemRef{}, false
	}
	return items[itemIndex], true
}

// StateAt returns the lifecycle record at the given position.
func (r *Registry) StateAt(topicIndex, itemIndex int) (ItemState, bool) {
	ref, ok := r.ItemAt(topicIndex, itemIndex)
	if !ok {
		return ItemState{}, false
	}
	state, ok := r.states[ref.ID]
	if !ok {
		return ItemState{}, false
	}
	return *state, true
}

// States returns a snapshot of every lifecycle record in traversal order.
func (r *Registry) States() []ItemState {
	out := make([]ItemState, 0, len(r.states))
	for ti := range r.topics {
		for ii := range r.topics[ti].Items {
			if state, ok := r.StateAt(ti, ii); ok {
				out = append(out, state)
			}
		}
	}
	return out
}

// MarkBriefed transitions a pending item to briefed and stamps BriefedAt.
// Re-delivery of the command for an already-terminal item is an idempotent
// no-op: applied is false and no observer fires.
func (r *Registry) MarkBriefed(itemID string) (applied bool, err error) {
	return r.transition(itemID, StatusBriefed, "")
}

// MarkActioned transitions a pending item to actioned, recording the action
// taken and stamping ActionedAt. Idempotent no-op on terminal items.
func (r *Registry) MarkActioned(itemID, action string) (applied bool, err error) {
	return r.transition(itemID, StatusActioned, action)
}

// MarkSkipped transitions a pending item to skipped.
// Idempotent no-op on terminal items.
func (r *Registry) MarkSkipped(itemID string) (applied bool, err error) {
	return r.transition(itemID, StatusSkipped, "")
}

func (r *Registry) transition(itemID string, to Status, action string) (bool, error) {
	state, ok := r.states[itemID]
	if !ok {
		return false, fmt.Errorf("mark %s %q: %w", to, itemID, ErrUnknownItem)
	}

	if state.Status != StatusPending {
		// At-least-once delivery from the upstream layer replays commands;
		// a replay must not corrupt state or count as an error.
		r.log.Warn().
			Str("item", itemID).
			Str("status", string(state.Status)).
			Str("requested", string(to)).
			Msg("item already terminal, ignoring transition")
		return false, nil
	}

	now := r.now()
	r.counts[state.Status]--
	state.Status = to
	r.counts[to]++

	switch to {
	case StatusBriefed:
		state.BriefedAt = &now
	case StatusActioned:
		state.ActionTaken = action
		state.ActionedAt = &now
	}

	if r.onChange != nil {
		r.onChange(*state)
	}

	return true, nil
}

// register indexes a single item at the given position. Returns false if
// the id is already registered (the duplicate is ignored).
func (r *Registry) register(ref ItemRef, topicIndex, itemIndex int) bool {
	if _, exists := r.states[ref.ID]; exists {
		r.log.Warn().
			Str("item", ref.ID).
			Int("topic", topicIndex).
			Int("index", itemIndex).
			Msg("duplicate item id, keeping existing registration")
		return false
	}

	r.states[ref.ID] = &ItemState{
		ItemID:     ref.ID,
		TopicIndex: topicIndex,
		ItemIndex:  itemIndex,
		Status:     StatusPending,
	}
	r.counts[StatusPending]++
	return true
}
