package eventbus

import (
	"github.com/colonyops/briefly/internal/core/briefing"
)

// Event names a bus event type.
type Event string

// Event names, kept sorted A-Z.
const (
	EventActionUndone   Event = "action.undone"
	EventItemActioned   Event = "item.actioned"
	EventItemBriefed    Event = "item.briefed"
	EventItemSkipped    Event = "item.skipped"
	EventRecordsFlushed Event = "records.flushed"
	EventSessionPaused  Event = "session.paused"
	EventSessionResumed Event = "session.resumed"
	EventSessionStopped Event = "session.stopped"
	EventTopicSkipped   Event = "topic.skipped"
	EventTopicsMerged   Event = "topics.merged"
)

// ItemBriefedPayload is emitted when an item transitions to briefed.
type ItemBriefedPayload struct {
	SessionID string
	State     briefing.ItemState
}

// ItemActionedPayload is emitted when an item transitions to actioned.
type ItemActionedPayload struct {
	SessionID string
	State     briefing.ItemState
}

// ItemSkippedPayload is emitted when an item transitions to skipped.
type ItemSkippedPayload struct {
	SessionID string
	State     briefing.ItemState
}

// TopicSkippedPayload is emitted when a whole topic is skipped.
type TopicSkippedPayload struct {
	SessionID  string
	TopicLabel string
	Skipped    int
}

// TopicsMergedPayload is emitted when new topics are folded into a live session.
type TopicsMergedPayload struct {
	SessionID string
	Added     int
}

// SessionPausedPayload is emitted when a session is paused.
type SessionPausedPayload struct {
	SessionID string
}

// SessionResumedPayload is emitted when a paused session resumes.
type SessionResumedPayload struct {
	SessionID string
}

// SessionStoppedPayload is emitted when a session stops.
type SessionStoppedPayload struct {
	SessionID    string
	SaveProgress bool
}

// ActionUndonePayload is emitted when a ledger entry is reversed.
type ActionUndonePayload struct {
	SessionID string
	ItemID    string
	Action    string
}

// RecordsFlushedPayload is emitted after the final batched persistence write.
type RecordsFlushedPayload struct {
	SessionID string
	Written   int
}

// PublishItemBriefed publishes an item.briefed event.
func (bus *EventBus) PublishItemBriefed(p ItemBriefedPayload) {
	bus.send(EventItemBriefed, p)
}

// SubscribeItemBriefed registers a handler for item.briefed events.
func (bus *EventBus) SubscribeItemBriefed(fn func(ItemBriefedPayload)) {
	bus.subscribe(EventItemBriefed, func(payload any) {
		if p, ok := payload.(ItemBriefedPayload); ok {
			fn(p)
		}
	})
}

// PublishItemActioned publishes an item.actioned event.
func (bus *EventBus) PublishItemActioned(p ItemActionedPayload) {
	bus.send(EventItemActioned, p)
}

// SubscribeItemActioned registers a handler for item.actioned events.
func (bus *EventBus) SubscribeItemActioned(fn func(ItemActionedPayload)) {
	bus.subscribe(EventItemActioned, func(payload any) {
		if p, ok := payload.(ItemActionedPayload); ok {
			fn(p)
		}
	})
}

// PublishItemSkipped publishes an item.skipped event.
func (bus *EventBus) PublishItemSkipped(p ItemSkippedPayload) {
	bus.send(EventItemSkipped, p)
}

// SubscribeItemSkipped registers a handler for item.skipped events.
func (bus *EventBus) SubscribeItemSkipped(fn func(ItemSkippedPayload)) {
	bus.subscribe(EventItemSkipped, func(payload any) {
		if p, ok := payload.(ItemSkippedPayload); ok {
			fn(p)
		}
	})
}

// PublishTopicSkipped publishes a topic.skipped event.
func (bus *EventBus) PublishTopicSkipped(p TopicSkippedPayload) {
	bus.send(EventTopicSkipped, p)
}

// SubscribeTopicSkipped registers a handler for topic.skipped events.
func (bus *EventBus) SubscribeTopicSkipped(fn func(TopicSkippedPayload)) {
	bus.subscribe(EventTopicSkipped, func(payload any) {
		if p, ok := payload.(TopicSkippedPayload); ok {
			fn(p)
		}
	})
}

// PublishTopicsMerged publishes a topics.merged event.
func (bus *EventBus) PublishTopicsMerged(p TopicsMergedPayload) {
	bus.send(EventTopicsMerged, p)
}

// SubscribeTopicsMerged registers a handler for topics.merged events.
func (bus *EventBus) SubscribeTopicsMerged(fn func(TopicsMergedPayload)) {
	bus.subscribe(EventTopicsMerged, func(payload any) {
		if p, ok := payload.(TopicsMergedPayload); ok {
			fn(p)
		}
	})
}

// PublishSessionPaused publishes a session.paused event.
func (bus *EventBus) PublishSessionPaused(p SessionPausedPayload) {
	bus.send(EventSessionPaused, p)
}

// SubscribeSessionPaused registers a handler for session.paused events.
func (bus *EventBus) SubscribeSessionPaused(fn func(SessionPausedPayload)) {
	bus.subscribe(EventSessionPaused, func(payload any) {
		if p, ok := payload.(SessionPausedPayload); ok {
			fn(p)
		}
	})
}

// PublishSessionResumed publishes a session.resumed event.
func (bus *EventBus) PublishSessionResumed(p SessionResumedPayload) {
	bus.send(EventSessionResumed, p)
}

// SubscribeSessionResumed registers a handler for session.resumed events.
func (bus *EventBus) SubscribeSessionResumed(fn func(SessionResumedPayload)) {
	bus.subscribe(EventSessionResumed, func(payload any) {
		if p, ok := payload.(SessionResumedPayload); ok {
			fn(p)
		}
	})
}

// PublishSessionStopped publishes a session.stopped event.
func (bus *EventBus) PublishSessionStopped(p SessionStoppedPayload) {
	bus.send(EventSessionStopped, p)
}

// SubscribeSessionStopped registers a handler for session.stopped events.
func (bus *EventBus) SubscribeSessionStopped(fn func(SessionStoppedPayload)) {
	bus.subscribe(EventSessionStopped, func(payload any) {
		if p, ok := payload.(SessionStoppedPayload); ok {
			fn(p)
		}
	})
}

// PublishActionUndone publishes an action.undone event.
func (bus *EventBus) PublishActionUndone(p ActionUndonePayload) {
	bus.send(EventActionUndone, p)
}

// SubscribeActionUndone registers a handler for action.undone events.
func (bus *EventBus) SubscribeActionUndone(fn func(ActionUndonePayload)) {
	bus.subscribe(EventActionUndone, func(payload any) {
		if p, ok := payload.(ActionUndonePayload); ok {
			fn(p)
		}
	})
}

// PublishRecordsFlushed publishes a records.flushed event.
func (bus *EventBus) PublishRecordsFlushed(p RecordsFlushedPayload) {
	bus.send(EventRecordsFlushed, p)
}

// SubscribeRecordsFlushed registers a handler for records.flushed events.
func (bus *EventBus) SubscribeRecordsFlushed(fn func(RecordsFlushedPayload)) {
	bus.subscribe(EventRecordsFlushed, func(payload any) {
		if p, ok := payload.(RecordsFlushedPayload); ok {
			fn(p)
		}
	})
}
