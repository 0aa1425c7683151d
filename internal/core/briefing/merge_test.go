package briefing_test

import (
	"testing"

	"github.com/colonyops/briefly/internal/core/briefing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTopics_AppendsToExistingLabel(t *testing.T) {
	r, tr := newTestTracker(t)

	// Walk to (0,1) so the merge lands mid-traversal.
	_, err := tr.Advance()
	require.NoError(t, err)
	require.Equal(t, briefing.Cursor{TopicIndex: 0, ItemIndex: 1}, tr.Cursor())

	added := r.AddTopics([]briefing.Topic{
		{Label: "Urgent", Items: []briefing.ItemRef{
			{ID: "m4", Subject: "Second page A", Sender: "legal@example.com"},
			{ID: "m5", Subject: "Second page B", Sender: "legal@example.com"},
		}},
	})
	assert.Equal(t, 2, added)

	// New items take the next free indices in the existing topic.
	s4, err := r.Lookup("m4")
	require.NoError(t, err)
	assert.Equal(t, 0, s4.TopicIndex)
	assert.Equal(t, 2, s4.ItemIndex)

	s5, err := r.Lookup("m5")
	require.NoError(t, err)
	assert.Equal(t, 3, s5.ItemIndex)

	// Previously assigned positions never shift.
	s1, err := r.Lookup("m1")
	require.NoError(t, err)
	assert.Equal(t, 0, s1.TopicIndex)
	assert.Equal(t, 0, s1.ItemIndex)

	// Cursor is untouched and still valid.
	assert.Equal(t, briefing.Cursor{TopicIndex: 0, ItemIndex: 1}, tr.Cursor())
	ref, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, "m2", ref.ID)
}

func TestAddTopics_NewLabelAppendsTopic(t *testing.T) {
	r := newTestRegistry(t)

	added := r.AddTopics([]briefing.Topic{
		{Label: "Receipts", Items: []briefing.ItemRef{{ID: "r1", Subject: "Invoice", Sender: "billing@example.com"}}},
	})
	assert.Equal(t, 1, added)
	assert.Equal(t, 3, r.TopicCount())

	state, err := r.Lookup("r1")
	require.NoError(t, err)
	assert.Equal(t, 2, state.TopicIndex)
	assert.Equal(t, 0, state.ItemIndex)
	assert.Equal(t, briefing.StatusPending, state.Status)
}

func TestAddTopics_DuplicateIDsDropped(t *testing.T) {
	r := newTestRegistry(t)

	added := r.AddTopics([]briefing.Topic{
		{Label: "Urgent", Items: []briefing.ItemRef{
			{ID: "m1", Subject: "dupe", Sender: "x"},
			{ID: "m9", Subject: "fresh", Sender: "x"},
		}},
	})
	assert.Equal(t, 1, added)
	assert.Equal(t, 4, r.ItemCount())

	state, err := r.Lookup("m9")
	require.NoError(t, err)
	assert.Equal(t, 2, state.ItemIndex)
}

func TestAddTopics_MergeAfterTraversal(t *testing.T) {
	r, tr := newTestTracker(t)

	for range r.ItemCount() {
		_, err := tr.Advance()
		require.NoError(t, err)
	}
	require.True(t, tr.Complete())

	// A brand-new topic lands exactly where the complete sentinel points,
	// so the cursor picks it up without a rescan.
	r.AddTopics([]briefing.Topic{
		{Label: "Late arrivals", Items: []briefing.ItemRef{{ID: "l1", Subject: "new", Sender: "s"}}},
	})
	assert.False(t, tr.Complete())
	ref, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, "l1", ref.ID)
}

func TestAddTopics_RescanAfterMergeIntoExistingTopic(t *testing.T) {
	r, tr := newTestTracker(t)

	for range r.ItemCount() {
		_, err := tr.Advance()
		require.NoError(t, err)
	}
	require.True(t, tr.Complete())
	wasComplete := tr.Complete()

	// Items appended behind a completed cursor need a rescan to be seen.
	r.AddTopics([]briefing.Topic{
		{Label: "Urgent", Items: []briefing.ItemRef{{ID: "m4", Subject: "late", Sender: "s"}}},
	})
	require.True(t, tr.Complete())

	cursor := tr.Rescan(wasComplete)
	assert.Equal(t, briefing.Cursor{TopicIndex: 0, ItemIndex: 2}, cursor)
	assert.False(t, tr.Complete())
}

func TestAddTopics_NewTopicAfterCompleteSeesAppendedItems(t *testing.T) {
	// A merge that both appends to an existing topic and adds a new topic
	// turns the complete sentinel into a live position pointing at the new
	// topic. The rescan must still pick up the item appended behind it.
	r, tr := newTestTracker(t)

	for range r.ItemCount() {
		_, err := tr.Advance()
		require.NoError(t, err)
	}
	wasComplete := tr.Complete()
	require.True(t, wasComplete)

	r.AddTopics([]briefing.Topic{
		{Label: "Urgent", Items: []briefing.ItemRef{{ID: "m4", Subject: "late", Sender: "s"}}},
		{Label: "Fresh", Items: []briefing.ItemRef{{ID: "f1", Subject: "new topic", Sender: "s"}}},
	})
	// The old sentinel now points at the new topic, so completeness no
	// longer reads as true even though no rescan happened yet.
	require.False(t, tr.Complete())

	cursor := tr.Rescan(wasComplete)
	assert.Equal(t, briefing.Cursor{TopicIndex: 0, ItemIndex: 2}, cursor)

	// Walking forward visits the appended item, then the new topic.
	cursor, err := tr.Advance()
	require.NoError(t, err)
	assert.Equal(t, briefing.Cursor{TopicIndex: 2, ItemIndex: 0}, cursor)

	_, err = tr.Advance()
	require.NoError(t, err)
	require.True(t, tr.Complete())

	state, err := r.Lookup("m4")
	require.NoError(t, err)
	assert.Equal(t, briefing.StatusBriefed, state.Status)
}

func TestRescan_LeavesActiveCursorAlone(t *testing.T) {
	r, tr := newTestTracker(t)

	_, err := tr.Advance()
	require.NoError(t, err)
	before := tr.Cursor()
	wasComplete := tr.Complete()

	r.AddTopics([]briefing.Topic{
		{Label: "Urgent", Items: []briefing.ItemRef{{ID: "m4", Subject: "late", Sender: "s"}}},
	})
	assert.Equal(t, before, tr.Rescan(wasComplete))
}
