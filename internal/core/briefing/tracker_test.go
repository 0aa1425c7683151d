package briefing_test

import (
	"testing"

	"github.com/colonyops/briefly/internal/core/briefing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*briefing.Registry, *briefing.Tracker) {
	t.Helper()
	r := newTestRegistry(t)
	return r, briefing.NewTracker(r, zerolog.Nop())
}

func TestTracker_InitialCursor(t *testing.T) {
	_, tr := newTestTracker(t)

	assert.Equal(t, briefing.Cursor{TopicIndex: 0, ItemIndex: 0}, tr.Cursor())
	assert.False(t, tr.Complete())

	ref, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, "m1", ref.ID)
}

func TestTracker_AdvanceWalksQueueToComplete(t *testing.T) {
	// 2 topics, sizes [2,1]: advance drives (0,0) -> (0,1) -> (1,0) -> complete.
	r, tr := newTestTracker(t)

	cursor, err := tr.Advance()
	require.NoError(t, err)
	assert.Equal(t, briefing.Cursor{TopicIndex: 0, ItemIndex: 1}, cursor)

	cursor, err = tr.Advance()
	require.NoError(t, err)
	assert.Equal(t, briefing.Cursor{TopicIndex: 1, ItemIndex: 0}, cursor)

	cursor, err = tr.Advance()
	require.NoError(t, err)
	assert.True(t, cursor.IsComplete(r.TopicCount()))
	assert.True(t, tr.Complete())

	// Each advanced-over item was implicitly briefed.
	assert.Equal(t, 3, r.StatusCount(briefing.StatusBriefed))
	assert.Equal(t, 0, r.StatusCount(briefing.StatusPending))
}

func TestTracker_AdvanceWhileCompleteIsIdempotent(t *testing.T) {
	r, tr := newTestTracker(t)

	for range r.ItemCount() {
		_, err := tr.Advance()
		require.NoError(t, err)
	}
	require.True(t, tr.Complete())

	before := tr.Cursor()
	historyLen := tr.HistoryLen()

	cursor, err := tr.Advance()
	require.NoError(t, err)
	assert.Equal(t, before, cursor)
	assert.Equal(t, historyLen, tr.HistoryLen())
	assert.Equal(t, 0, r.StatusCount(briefing.StatusPending))
}

func TestTracker_AdvanceSkipsTerminalItems(t *testing.T) {
	r, tr := newTestTracker(t)

	// Action the middle item out-of-band; the scan must hop over it.
	_, err := r.MarkActioned("m2", "archive")
	require.NoError(t, err)

	cursor, err := tr.Advance()
	require.NoError(t, err)
	assert.Equal(t, briefing.Cursor{TopicIndex: 1, ItemIndex: 0}, cursor)
}

func TestTracker_AdvanceTerminatesWithinTotalItems(t *testing.T) {
	r, tr := newTestTracker(t)

	seen := map[briefing.Cursor]bool{}
	for i := 0; i <= r.ItemCount(); i++ {
		if tr.Complete() {
			break
		}
		cursor := tr.Cursor()
		assert.False(t, seen[cursor], "cursor revisited %+v", cursor)
		seen[cursor] = true

		state, ok := r.StateAt(cursor.TopicIndex, cursor.ItemIndex)
		require.True(t, ok)
		assert.Equal(t, briefing.StatusPending, state.Status, "cursor parked on non-pending item")

		_, err := tr.Advance()
		require.NoError(t, err)
	}
	assert.True(t, tr.Complete())
}

func TestTracker_SkipTopic(t *testing.T) {
	topics := []briefing.Topic{
		{Label: "Newsletters", Items: []briefing.ItemRef{
			{ID: "n1", Subject: "a", Sender: "s"},
			{ID: "n2", Subject: "b", Sender: "s"},
			{ID: "n3", Subject: "c", Sender: "s"},
		}},
		{Label: "Work", Items: []briefing.ItemRef{
			{ID: "w1", Subject: "d", Sender: "s"},
		}},
	}
	r := briefing.NewRegistry(topics, zerolog.Nop())
	tr := briefing.NewTracker(r, zerolog.Nop())

	cursor, skipped, err := tr.SkipTopic()
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	assert.Equal(t, briefing.Cursor{TopicIndex: 1, ItemIndex: 0}, cursor)
	assert.Equal(t, 3, r.StatusCount(briefing.StatusSkipped))

	// No pending items remain in the skipped topic.
	for ii := range topics[0].Items {
		state, ok := r.StateAt(0, ii)
		require.True(t, ok)
		assert.Equal(t, briefing.StatusSkipped, state.Status)
	}
}

func TestTracker_SkipTopicSparesTerminalItems(t *testing.T) {
	r, tr := newTestTracker(t)

	_, err := r.MarkActioned("m1", "reply")
	require.NoError(t, err)

	// Cursor still sits at (0,0); skip must leave the actioned item alone.
	_, skipped, err := tr.SkipTopic()
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)

	state, err := r.Lookup("m1")
	require.NoError(t, err)
	assert.Equal(t, briefing.StatusActioned, state.Status)
}

func TestTracker_SkipLastTopicCompletes(t *testing.T) {
	r, tr := newTestTracker(t)

	_, err := tr.Advance()
	require.NoError(t, err)
	_, err = tr.Advance()
	require.NoError(t, err)
	// Now on topic 1 (the last one).

	cursor, skipped, err := tr.SkipTopic()
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.True(t, cursor.IsComplete(r.TopicCount()))
}

func TestTracker_GoBackRestoresPositionNotStatus(t *testing.T) {
	r, tr := newTestTracker(t)

	start := tr.Cursor()
	_, err := tr.Advance()
	require.NoError(t, err)

	cursor, err := tr.GoBack(1)
	require.NoError(t, err)
	assert.Equal(t, start, cursor)

	// Pure position undo: the advanced-over item stays briefed.
	state, err := r.Lookup("m1")
	require.NoError(t, err)
	assert.Equal(t, briefing.StatusBriefed, state.Status)
}

func TestTracker_GoBackEmptyHistory(t *testing.T) {
	r, tr := newTestTracker(t)

	before := tr.Cursor()
	_, err := tr.GoBack(1)
	assert.ErrorIs(t, err, briefing.ErrNoHistory)
	assert.Equal(t, before, tr.Cursor())
	assert.Equal(t, 3, r.StatusCount(briefing.StatusPending))
}

func TestTracker_GoBackMultipleStepsAllOrNothing(t *testing.T) {
	_, tr := newTestTracker(t)

	start := tr.Cursor()
	_, err := tr.Advance()
	require.NoError(t, err)
	_, err = tr.Advance()
	require.NoError(t, err)

	// Requesting more steps than recorded fails without moving.
	mid := tr.Cursor()
	_, err = tr.GoBack(3)
	assert.ErrorIs(t, err, briefing.ErrNoHistory)
	assert.Equal(t, mid, tr.Cursor())

	cursor, err := tr.GoBack(2)
	require.NoError(t, err)
	assert.Equal(t, start, cursor)
	assert.Equal(t, 0, tr.HistoryLen())
}

func TestTracker_PauseResume(t *testing.T) {
	_, tr := newTestTracker(t)

	require.NoError(t, tr.Pause())
	assert.True(t, tr.Paused())
	assert.ErrorIs(t, tr.Pause(), briefing.ErrAlreadyPaused)

	require.NoError(t, tr.Resume())
	assert.False(t, tr.Paused())
	assert.ErrorIs(t, tr.Resume(), briefing.ErrNotPaused)
}

func TestTracker_StopRejectsNavigation(t *testing.T) {
	r, tr := newTestTracker(t)

	tr.Stop()
	assert.True(t, tr.Stopped())

	_, err := tr.Advance()
	assert.ErrorIs(t, err, briefing.ErrStopped)
	_, _, err = tr.SkipTopic()
	assert.ErrorIs(t, err, briefing.ErrStopped)
	_, err = tr.GoBack(1)
	assert.ErrorIs(t, err, briefing.ErrStopped)

	// Stop never alters registry state.
	assert.Equal(t, 3, r.StatusCount(briefing.StatusPending))
}

func TestTracker_EmptyRegistryStartsComplete(t *testing.T) {
	r := briefing.NewRegistry(nil, zerolog.Nop())
	tr := briefing.NewTracker(r, zerolog.Nop())

	assert.True(t, tr.Complete())
	_, ok := tr.Current()
	assert.False(t, ok)
}

func TestTracker_EmptyTopicIsTransparentlySkipped(t *testing.T) {
	topics := []briefing.Topic{
		{Label: "Empty"},
		{Label: "Work", Items: []briefing.ItemRef{{ID: "w1", Subject: "a", Sender: "s"}}},
	}
	r := briefing.NewRegistry(topics, zerolog.Nop())
	tr := briefing.NewTracker(r, zerolog.Nop())

	assert.Equal(t, briefing.Cursor{TopicIndex: 1, ItemIndex: 0}, tr.Cursor())
}
