package briefly

import (
	"context"
	"fmt"

	"github.com/colonyops/briefly/internal/core/briefing"
	"github.com/colonyops/briefly/internal/core/config"
	"github.com/colonyops/briefly/internal/core/eventbus"
	"github.com/colonyops/briefly/internal/core/tools"
	"github.com/colonyops/briefly/pkg/randid"
	"github.com/rs/zerolog"
)

// SessionService drives one briefing session: it owns the registry, tracker,
// tool vocabulary, undo ledger, and the async persistence pipeline, and is
// the single writer behind a sequential stream of voice-turn tool calls.
type SessionService struct {
	id     string
	userID string
	cfg    *config.Config

	registry *briefing.Registry
	tracker  *briefing.Tracker
	reporter *briefing.Reporter
	ledger   *tools.Ledger
	vocab    *tools.Registry

	persister  *Persister
	engagement *EngagementNotifier
	bus        *eventbus.EventBus
	log        zerolog.Logger

	saveProgress bool
}

// NewSessionService builds a session over the given topics. Muted senders
// are skipped at ingestion; VIP senders are flagged for narration emphasis.
func NewSessionService(
	cfg *config.Config,
	userID string,
	topics []briefing.Topic,
	persister *Persister,
	engagement *EngagementNotifier,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *SessionService {
	s := &SessionService{
		id:           randid.Generate(8),
		userID:       userID,
		cfg:          cfg,
		persister:    persister,
		engagement:   engagement,
		bus:          bus,
		saveProgress: true,
	}
	s.log = log.With().Str("component", "session").Str("session_id", s.id).Logger()

	annotated := s.annotateVIP(topics)
	s.registry = briefing.NewRegistry(annotated, s.log)
	s.registry.OnChange(s.onStateChange)
	s.muteSenders(annotated)

	s.tracker = briefing.NewTracker(s.registry, s.log)
	s.reporter = briefing.NewReporter(s.registry, s.tracker)
	s.ledger = tools.NewLedger(cfg.Session.LedgerSize)

	s.vocab = tools.NewRegistry(s.log)
	tools.RegisterNavTools(s.vocab)

	return s
}

// ID returns the session identifier.
func (s *SessionService) ID() string { return s.id }

// UserID returns the user this session briefs.
func (s *SessionService) UserID() string { return s.userID }

// Reporter exposes read-only progress snapshots.
func (s *SessionService) Reporter() *briefing.Reporter { return s.reporter }

// Ledger exposes the undo ring for the external action layer.
func (s *SessionService) Ledger() *tools.Ledger { return s.ledger }

// Tools exposes the tool vocabulary, e.g. for schema export.
func (s *SessionService) Tools() *tools.Registry { return s.vocab }

// SaveOnExit reports whether stop_briefing asked for a final flush.
func (s *SessionService) SaveOnExit() bool { return s.saveProgress }

// Execute dispatches one tool call against this session.
func (s *SessionService) Execute(ctx context.Context, name string, args tools.Args) (tools.Result, error) {
	return s.vocab.Execute(ctx, s, name, args)
}

// Advance moves to the next pending item. The tracker marks the current
// item briefed first when it is still pending.
func (s *SessionService) Advance() (briefing.Cursor, error) {
	return s.tracker.Advance()
}

// MarkActioned records an explicit action on an item, optionally entering it
// into the undo ledger when the provider can reverse it.
func (s *SessionService) MarkActioned(itemID, action, inverse string, reversible bool) error {
	applied, err := s.registry.MarkActioned(itemID, action)
	if err != nil {
		return err
	}
	if applied {
		s.ledger.Record(tools.Entry{
			ItemID:     itemID,
			Action:     action,
			Inverse:    inverse,
			Reversible: reversible,
		})
	}
	return nil
}

// SkipTopic bulk-skips the rest of the current topic.
func (s *SessionService) SkipTopic(reason string) (briefing.Cursor, int, error) {
	prog := s.reporter.GetProgress()
	label := prog.CurrentTopic

	cursor, skipped, err := s.tracker.SkipTopic()
	if err != nil {
		return cursor, skipped, err
	}

	if reason != "" {
		s.log.Info().Str("topic", label).Str("reason", reason).Int("skipped", skipped).Msg("topic skipped")
	}
	s.bus.PublishTopicSkipped(eventbus.TopicSkippedPayload{
		SessionID:  s.id,
		TopicLabel: label,
		Skipped:    skipped,
	})

	return cursor, skipped, nil
}

// GoBack rewinds the cursor. Item statuses are untouched.
func (s *SessionService) GoBack(steps int) (briefing.Cursor, error) {
	return s.tracker.GoBack(steps)
}

// Pause pauses the session.
func (s *SessionService) Pause() error {
	if err := s.tracker.Pause(); err != nil {
		return err
	}
	s.bus.PublishSessionPaused(eventbus.SessionPausedPayload{SessionID: s.id})
	return nil
}

// Resume resumes a paused session.
func (s *SessionService) Resume() error {
	if err := s.tracker.Resume(); err != nil {
		return err
	}
	s.bus.PublishSessionResumed(eventbus.SessionResumedPayload{SessionID: s.id})
	return nil
}

// Stop ends the session. The caller is responsible for invoking Flush when
// saveProgress is set; Stop itself never blocks on I/O.
func (s *SessionService) Stop(saveProgress bool) error {
	s.tracker.Stop()
	s.saveProgress = saveProgress
	s.bus.PublishSessionStopped(eventbus.SessionStoppedPayload{
		SessionID:    s.id,
		SaveProgress: saveProgress,
	})
	return nil
}

// AddTopics folds newly arrived topics into the live session. Existing
// positions never shift; a completed cursor is rescanned so new arrivals
// still get presented.
func (s *SessionService) AddTopics(newTopics []briefing.Topic) int {
	wasComplete := s.tracker.Complete()

	annotated := s.annotateVIP(newTopics)
	added := s.registry.AddTopics(annotated)
	if added == 0 {
		return 0
	}

	s.muteSenders(annotated)
	s.tracker.Rescan(wasComplete)

	s.bus.PublishTopicsMerged(eventbus.TopicsMergedPayload{
		SessionID: s.id,
		Added:     added,
	})
	return added
}

// UndoLast reverses the most recent reversible external action.
func (s *SessionService) UndoLast(ctx context.Context, provider tools.Provider) (tools.Entry, error) {
	entry, err := s.ledger.UndoLast(ctx, provider)
	if err != nil {
		return entry, err
	}

	s.bus.PublishActionUndone(eventbus.ActionUndonePayload{
		SessionID: s.id,
		ItemID:    entry.ItemID,
		Action:    entry.Action,
	})
	return entry, nil
}

// Flush writes every handled item's record in one awaited batch.
func (s *SessionService) Flush(ctx context.Context) (int, error) {
	written, err := s.persister.Flush(ctx, s.registry.States())
	if err != nil {
		return written, fmt.Errorf("flush session records: %w", err)
	}

	s.bus.PublishRecordsFlushed(eventbus.RecordsFlushedPayload{
		SessionID: s.id,
		Written:   written,
	})
	return written, nil
}

// Close stops the background persistence worker. Call Flush first when
// progress should be durable.
func (s *SessionService) Close() {
	s.persister.Close()
}

// onStateChange fans a registry mutation out to the async collaborators.
// Both paths are fire-and-forget; the in-memory state is already committed.
func (s *SessionService) onStateChange(state briefing.ItemState) {
	s.persister.Enqueue(state.ItemID, RecordFromState(state))

	if s.cfg.Engagement.Enabled {
		s.engagement.Observe(state)
	}

	switch state.Status {
	case briefing.StatusBriefed:
		s.bus.PublishItemBriefed(eventbus.ItemBriefedPayload{SessionID: s.id, State: state})
	case briefing.StatusActioned:
		s.bus.PublishItemActioned(eventbus.ItemActionedPayload{SessionID: s.id, State: state})
	case briefing.StatusSkipped:
		s.bus.PublishItemSkipped(eventbus.ItemSkippedPayload{SessionID: s.id, State: state})
	}
}

// annotateVIP flags items from VIP senders so the reporter's markers call
// them out. The incoming slices are copied; callers keep their originals.
func (s *SessionService) annotateVIP(topics []briefing.Topic) []briefing.Topic {
	if len(s.cfg.VIPSenders) == 0 {
		return topics
	}

	out := make([]briefing.Topic, len(topics))
	for i, topic := range topics {
		items := make([]briefing.ItemRef, len(topic.Items))
		copy(items, topic.Items)
		for j := range items {
			if config.MatchesAny(s.cfg.VIPSenders, items[j].Sender) {
				items[j].IsFlagged = true
			}
		}
		out[i] = briefing.Topic{Label: topic.Label, Items: items}
	}
	return out
}

// muteSenders skips items from muted senders at ingestion time, so the
// traversal never parks on them. Mute wins over VIP.
func (s *SessionService) muteSenders(topics []briefing.Topic) {
	if len(s.cfg.MutedSenders) == 0 {
		return
	}

	for _, topic := range topics {
		for _, item := range topic.Items {
			if !config.MatchesAny(s.cfg.MutedSenders, item.Sender) {
				continue
			}
			state, err := s.registry.Lookup(item.ID)
			if err != nil || state.Status != briefing.StatusPending {
				continue
			}
			if _, err := s.registry.MarkSkipped(item.ID); err == nil {
				s.log.Debug().Str("item_id", item.ID).Str("sender", item.Sender).Msg("muted sender, item skipped")
			}
		}
	}
}
