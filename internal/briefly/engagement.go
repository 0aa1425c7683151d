package briefly

import (
	"context"
	"time"

	"github.com/colonyops/briefly/internal/core/briefing"
	"github.com/rs/zerolog"
)

// Profile is the external engagement-profile collaborator. It learns from
// observed triage behavior; it is never a correctness dependency.
type Profile interface {
	ObserveAction(ctx context.Context, userID string, state briefing.ItemState) error
}

// EngagementNotifier forwards status changes to a Profile, fire-and-forget.
// Failures are logged at debug and swallowed.
type EngagementNotifier struct {
	profile Profile
	userID  string
	log     zerolog.Logger
}

// NewEngagementNotifier creates a notifier for the given profile.
// A nil profile yields a notifier whose Observe is a no-op.
func NewEngagementNotifier(profile Profile, userID string, log zerolog.Logger) *EngagementNotifier {
	return &EngagementNotifier{
		profile: profile,
		userID:  userID,
		log:     log.With().Str("component", "engagement").Logger(),
	}
}

// Observe dispatches one observation in the background.
func (n *EngagementNotifier) Observe(state briefing.ItemState) {
	if n == nil || n.profile == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := n.profile.ObserveAction(ctx, n.userID, state); err != nil {
			n.log.Debug().Err(err).Str("item_id", state.ItemID).Msg("engagement observation dropped")
		}
	}()
}
