// Package briefing defines the session traversal domain model: immutable
// item references grouped into ordered topics, one mutable lifecycle record
// per item, and the cursor that identifies the item currently being narrated.
package briefing

import "time"

// Priority marks how urgently an item should be surfaced during narration.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// ItemRef is an immutable reference to one unit of work, supplied by an
// external source adapter. The registry never copies a mutated version of it.
type ItemRef struct {
	ID        string   `json:"id"`
	Subject   string   `json:"subject"`
	Sender    string   `json:"sender"`
	Priority  Priority `json:"priority,omitempty"`
	IsFlagged bool     `json:"is_flagged,omitempty"`
	Summary   string   `json:"summary,omitempty"`
}

// Topic is a named, ordered group of items presented together.
// Order is narration order. A topic may gain items mid-session via
// Registry.AddTopics but never loses or reorders existing ones.
type Topic struct {
	Label string    `json:"label"`
	Items []ItemRef `json:"items"`
}

// Status represents the lifecycle state of an item within a session.
type Status string

const (
	StatusPending  Status = "pending"
	StatusBriefed  Status = "briefed"
	StatusActioned Status = "actioned"
	StatusSkipped  Status = "skipped"
)

// Terminal reports whether the status is one of the end states.
// Transitions are one-way: pending may move to any terminal status,
// and no terminal status reverts within a session.
func (s Status) Terminal() bool {
	return s == StatusBriefed || s == StatusActioned || s == StatusSkipped
}

// Valid reports whether s is one of the four defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusBriefed, StatusActioned, StatusSkipped:
		return true
	}
	return false
}

// ItemState is the registry-owned mutable lifecycle record for one item.
// Created at registration, never destroyed during the session. It stores
// only the item id plus its position; the ItemRef itself stays in the Topic.
type ItemState struct {
	ItemID      string     `json:"item_id"`
	TopicIndex  int        `json:"topic_index"`
	ItemIndex   int        `json:"item_index"`
	Status      Status     `json:"status"`
	ActionTaken string     `json:"action_taken,omitempty"`
	BriefedAt   *time.Time `json:"briefed_at,omitempty"`
	ActionedAt  *time.Time `json:"actioned_at,omitempty"`
}
