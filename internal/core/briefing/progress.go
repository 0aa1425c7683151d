package briefing

import (
	"fmt"
	"strings"
)

// Progress is a snapshot of traversal state: per-status counts, the current
// item and topic, and how much work remains.
type Progress struct {
	Counts       map[Status]int `json:"counts"`
	Total        int            `json:"total"`
	Remaining    int            `json:"remaining"`
	Complete     bool           `json:"complete"`
	Paused       bool           `json:"paused"`
	CurrentTopic string         `json:"current_topic,omitempty"`
	CurrentItem  *ItemRef       `json:"current_item,omitempty"`
	TopicIndex   int            `json:"topic_index"`
	TopicCount   int            `json:"topic_count"`
	ItemIndex    int            `json:"item_index"`
	TopicSize    int            `json:"topic_size"`
}

// Reporter renders registry + tracker state into the snapshots and text
// blocks consumed by the upstream reasoning component.
type Reporter struct {
	registry *Registry
	tracker  *Tracker
}

// NewReporter creates a reporter over the given registry and tracker.
func NewReporter(registry *Registry, tracker *Tracker) *Reporter {
	return &Reporter{registry: registry, tracker: tracker}
}

// GetProgress returns the current traversal snapshot. Pure read; the
// counts come from the registry's maintained counters.
func (p *Reporter) GetProgress() Progress {
	prog := Progress{
		Counts: map[Status]int{
			StatusPending:  p.registry.StatusCount(StatusPending),
			StatusBriefed:  p.registry.StatusCount(StatusBriefed),
			StatusActioned: p.registry.StatusCount(StatusActioned),
			StatusSkipped:  p.registry.StatusCount(StatusSkipped),
		},
		Total:      p.registry.ItemCount(),
		Remaining:  p.registry.StatusCount(StatusPending),
		Complete:   p.tracker.Complete(),
		Paused:     p.tracker.Paused(),
		TopicCount: p.registry.TopicCount(),
	}

	if ref, ok := p.tracker.Current(); ok {
		cursor := p.tracker.Cursor()
		topic := p.registry.Topics()[cursor.TopicIndex]
		prog.CurrentTopic = topic.Label
		prog.CurrentItem = &ref
		prog.TopicIndex = cursor.TopicIndex
		prog.ItemIndex = cursor.ItemIndex
		prog.TopicSize = len(topic.Items)
	} else {
		prog.TopicIndex = prog.TopicCount
	}

	return prog
}

// BuildCursorContext renders a short directive block naming the exact
// current item and telling the caller what to do next.
func (p *Reporter) BuildCursorContext() string {
	prog := p.GetProgress()

	var b strings.Builder
	b.WriteString("CURRENT POSITION\n")

	if prog.Complete {
		fmt.Fprintf(&b, "All %d topics covered. %d briefed, %d actioned, %d skipped.\n",
			prog.TopicCount,
			prog.Counts[StatusBriefed], prog.Counts[StatusActioned], prog.Counts[StatusSkipped])
		b.WriteString("Next step: summarize the completed briefing and ask whether anything should be revisited.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Topic %d of %d: %s\n", prog.TopicIndex+1, prog.TopicCount, prog.CurrentTopic)
	fmt.Fprintf(&b, "Item %d of %d in this topic.\n", prog.ItemIndex+1, prog.TopicSize)
	fmt.Fprintf(&b, "Current item: %q from %s (id: %s)%s\n",
		prog.CurrentItem.Subject, prog.CurrentItem.Sender, prog.CurrentItem.ID,
		itemMarkers(*prog.CurrentItem))
	if prog.CurrentItem.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", prog.CurrentItem.Summary)
	}
	fmt.Fprintf(&b, "%d items remain overall.\n", prog.Remaining)
	if prog.Paused {
		b.WriteString("The briefing is paused. Wait for resume before presenting.\n")
	} else {
		b.WriteString("Next step: present this item to the listener.\n")
	}

	return b.String()
}

// BuildCompactReference renders only the pending items, grouped by topic.
// The current topic is shown in full detail; other topics collapse to a
// count, which bounds the size of the block regardless of queue length.
func (p *Reporter) BuildCompactReference() string {
	cursor := p.tracker.Cursor()
	topics := p.registry.Topics()

	var b strings.Builder
	b.WriteString("PENDING QUEUE\n")

	wrote := false
	for ti, topic := range topics {
		pending := p.pendingIn(ti)
		if len(pending) == 0 {
			continue
		}
		wrote = true

		if ti == cursor.TopicIndex {
			fmt.Fprintf(&b, "%s (current, %d pending):\n", topic.Label, len(pending))
			for _, ref := range pending {
				fmt.Fprintf(&b, "  - %q from %s (id: %s)%s\n",
					ref.Subject, ref.Sender, ref.ID, itemMarkers(ref))
			}
		} else {
			fmt.Fprintf(&b, "%s: %d pending\n", topic.Label, len(pending))
		}
	}

	if !wrote {
		b.WriteString("No pending items.\n")
	}

	return b.String()
}

// pendingIn returns the pending item refs of one topic in narration order.
func (p *Reporter) pendingIn(topicIndex int) []ItemRef {
	var pending []ItemRef
	for ii := range p.registry.Topics()[topicIndex].Items {
		state, ok := p.registry.StateAt(topicIndex, ii)
		if !ok || state.Status != StatusPending {
			continue
		}
		ref, _ := p.registry.ItemAt(topicIndex, ii)
		pending = append(pending, ref)
	}
	return pending
}

// itemMarkers renders the priority and flag annotations for an item, or
// an empty string when it has neither. Normal priority is the unmarked
// default.
func itemMarkers(ref ItemRef) string {
	var marks []string
	switch ref.Priority {
	case PriorityHigh:
		marks = append(marks, "high priority")
	case PriorityLow:
		marks = append(marks, "low priority")
	}
	if ref.IsFlagged {
		marks = append(marks, "flagged")
	}
	if len(marks) == 0 {
		return ""
	}
	return " [" + strings.Join(marks, ", ") + "]"
}
