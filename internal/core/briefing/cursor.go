package briefing

// Cursor identifies which item is current for narration. The complete
// sentinel is {TopicIndex: topicCount, ItemIndex: 0}.
type Cursor struct {
	TopicIndex int `json:"topic_index"`
	ItemIndex  int `json:"item_index"`
}

// CompleteCursor returns the sentinel cursor for a session whose traversal
// has finished.
func CompleteCursor(topicCount int) Cursor {
	return Cursor{TopicIndex: topicCount, ItemIndex: 0}
}

// IsComplete reports whether the cursor is the complete sentinel for the
// given topic count.
func (c Cursor) IsComplete(topicCount int) bool {
	return c.TopicIndex >= topicCount
}

// Before reports whether c strictly precedes other in narration order.
func (c Cursor) Before(other Cursor) bool {
	if c.TopicIndex != other.TopicIndex {
		return c.TopicIndex < other.TopicIndex
	}
	return c.ItemIndex < other.ItemIndex
}

// History is a stack of prior cursor values. Entries are pushed on every
// forward move (advance, topic skip) and popped by back-moves. Growth is
// bounded by the total item count, since only forward moves push.
type History struct {
	entries []Cursor
}

// NewHistory returns a history stack with capacity hinted at the expected
// total number of forward moves.
func NewHistory(sizeHint int) *History {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &History{entries: make([]Cursor, 0, sizeHint)}
}

// Push records a cursor position prior to a forward move.
func (h *History) Push(c Cursor) {
	h.entries = append(h.entries, c)
}

// Pop removes and returns the most recent entry.
// The second return is false when the history is empty.
func (h *History) Pop() (Cursor, bool) {
	if len(h.entries) == 0 {
		return Cursor{}, false
	}
	c := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return c, true
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}
