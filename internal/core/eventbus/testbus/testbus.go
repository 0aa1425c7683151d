// Package testbus provides test utilities for the event bus.
// It wraps a real EventBus with event recording and assertion helpers.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/briefly/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus wraps a real EventBus with event recording for tests.
type Bus struct {
	*eventbus.EventBus
	cancel context.CancelFunc

	mu     sync.Mutex
	events []RecordedEvent
}

// New creates a test bus, starts it in a background goroutine, and
// subscribes to all event types for recording. The bus is stopped
// when the test completes.
func New(t *testing.T) *Bus {
	t.Helper()

	bus := eventbus.New(64)
	ctx, cancel := context.WithCancel(context.Background())

	tb := &Bus{
		EventBus: bus,
		cancel:   cancel,
	}

	// Subscribe to all event types for recording.
	bus.SubscribeItemBriefed(func(p eventbus.ItemBriefedPayload) {
		tb.record(eventbus.EventItemBriefed, p)
	})
	bus.SubscribeItemActioned(func(p eventbus.ItemActionedPayload) {
		tb.record(eventbus.EventItemActioned, p)
	})
	bus.SubscribeItemSkipped(func(p eventbus.ItemSkippedPayload) {
		tb.record(eventbus.EventItemSkipped, p)
	})
	bus.SubscribeTopicSkipped(func(p eventbus.TopicSkippedPayload) {
		tb.record(eventbus.EventTopicSkipped, p)
	})
	bus.SubscribeTopicsMerged(func(p eventbus.TopicsMergedPayload) {
		tb.record(eventbus.EventTopicsMerged, p)
	})
	bus.SubscribeSessionPaused(func(p eventbus.SessionPausedPayload) {
		tb.record(eventbus.EventSessionPaused, p)
	})
	bus.SubscribeSessionResumed(func(p eventbus.SessionResumedPayload) {
		tb.record(eventbus.EventSessionResumed, p)
	})
	bus.SubscribeSessionStopped(func(p eventbus.SessionStoppedPayload) {
		tb.record(eventbus.EventSessionStopped, p)
	})
	bus.SubscribeActionUndone(func(p eventbus.ActionUndonePayload) {
		tb.record(eventbus.EventActionUndone, p)
	})
	bus.SubscribeRecordsFlushed(func(p eventbus.RecordsFlushedPayload) {
		tb.record(eventbus.EventRecordsFlushed, p)
	})

	go bus.Run(ctx)

	t.Cleanup(func() {
		cancel()
	})

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, RecordedEvent{Event: event, Payload: payload})
}

// Events returns a copy of all recorded events.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	out := make([]RecordedEvent, len(tb.events))
	copy(out, tb.events)
	return out
}

// Reset clears all recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = nil
}

// WaitFor blocks until an event of the given type is recorded or the timeout expires.
// Returns true if the event was found.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.After(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return false
		case <-ticker.C:
			if tb.has(event) {
				return true
			}
		}
	}
}

func (tb *Bus) has(event eventbus.Event) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for _, e := range tb.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

// AssertPublished asserts that an event of the given type was recorded.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, 500*time.Millisecond) {
		t.Errorf("expected event %q to be published, but it was not", event)
	}
}

// AssertNotPublished asserts that an event of the given type was NOT recorded
// within the given wait period.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	time.Sleep(wait)
	if tb.has(event) {
		t.Errorf("expected event %q to NOT be published, but it was", event)
	}
}
