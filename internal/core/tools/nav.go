package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/briefly/internal/core/briefing"
)

// RegisterNavTools installs the full navigation vocabulary into the registry.
func RegisterNavTools(reg *Registry) {
	reg.MustRegister(NextItemTool())
	reg.MustRegister(SkipTopicTool())
	reg.MustRegister(GoBackTool())
	reg.MustRegister(RepeatThatTool())
	reg.MustRegister(GoDeeperTool())
	reg.MustRegister(PauseTool())
	reg.MustRegister(ResumeTool())
	reg.MustRegister(StopTool())
}

// NextItemTool advances past the current item to the next pending one.
func NextItemTool() *Tool {
	return &Tool{
		Name:        "next_item",
		Description: "Move on to the next item in the briefing. The current item is marked briefed if no other action was taken on it.",
		Schema:      Schema{Properties: map[string]Property{}},
		Handler: func(ctx context.Context, sess Session, args Args) Result {
			cursor, err := sess.Advance()
			if err != nil {
				return navFailure(err)
			}
			return describePosition(sess, cursor, "moved to next item")
		},
	}
}

// SkipTopicTool bulk-skips the remaining items in the current topic.
func SkipTopicTool() *Tool {
	return &Tool{
		Name:        "skip_topic",
		Description: "Skip the rest of the current topic. Every remaining unheard item in it is marked skipped.",
		Schema: Schema{
			Properties: map[string]Property{
				"reason": {Type: "string", Description: "Optional reason the user gave for skipping."},
			},
		},
		Handler: func(ctx context.Context, sess Session, args Args) Result {
			reason := args.String("reason", "")
			cursor, skipped, err := sess.SkipTopic(reason)
			if err != nil {
				return navFailure(err)
			}
			res := describePosition(sess, cursor, fmt.Sprintf("skipped %d items", skipped))
			if res.Data == nil {
				res.Data = map[string]any{}
			}
			res.Data["skipped"] = skipped
			return res
		},
	}
}

// GoBackTool rewinds the cursor without changing any item status.
func GoBackTool() *Tool {
	return &Tool{
		Name:        "go_back",
		Description: "Return to a previously visited item. Position moves back; item statuses are untouched.",
		Schema: Schema{
			Properties: map[string]Property{
				"steps": {Type: "integer", Description: "How many positions to rewind.", Default: 1},
			},
		},
		Handler: func(ctx context.Context, sess Session, args Args) Result {
			steps := args.Int("steps", 1)
			if steps < 1 {
				return Failf("steps must be at least 1, got %d", steps)
			}
			cursor, err := sess.GoBack(steps)
			if err != nil {
				if errors.Is(err, briefing.ErrNoHistory) {
					return Fail("nothing to go back to")
				}
				return navFailure(err)
			}
			return describePosition(sess, cursor, fmt.Sprintf("went back %d step(s)", steps))
		},
	}
}

// RepeatThatTool re-presents the current item. Read-only.
func RepeatThatTool() *Tool {
	return &Tool{
		Name:        "repeat_that",
		Description: "Repeat the current item. No state changes.",
		Schema:      Schema{Properties: map[string]Property{}},
		Handler: func(ctx context.Context, sess Session, args Args) Result {
			prog := sess.Reporter().GetProgress()
			if prog.CurrentItem == nil {
				return Fail("nothing to repeat: the briefing is complete")
			}
			return Okf("repeating %q from %s", prog.CurrentItem.Subject, prog.CurrentItem.Sender).
				WithData(map[string]any{
					"context": sess.Reporter().BuildCursorContext(),
				})
		},
	}
}

// GoDeeperTool asks for more detail on the current item. Read-only; the
// upstream component uses the returned context to expand its narration.
func GoDeeperTool() *Tool {
	return &Tool{
		Name:        "go_deeper",
		Description: "Give more detail on the current item, optionally focused on one aspect.",
		Schema: Schema{
			Properties: map[string]Property{
				"aspect": {Type: "string", Description: "Optional aspect to focus on, e.g. attachments or dates."},
			},
		},
		Handler: func(ctx context.Context, sess Session, args Args) Result {
			prog := sess.Reporter().GetProgress()
			if prog.CurrentItem == nil {
				return Fail("no current item to expand: the briefing is complete")
			}
			data := map[string]any{
				"item_id": prog.CurrentItem.ID,
				"context": sess.Reporter().BuildCursorContext(),
			}
			if aspect := args.String("aspect", ""); aspect != "" {
				data["aspect"] = aspect
				return Okf("expanding on %s of %q", aspect, prog.CurrentItem.Subject).WithData(data)
			}
			return Okf("expanding on %q", prog.CurrentItem.Subject).WithData(data)
		},
	}
}

// PauseTool pauses the briefing.
func PauseTool() *Tool {
	return &Tool{
		Name:        "pause_briefing",
		Description: "Pause the briefing. Position is kept for resume.",
		Schema:      Schema{Properties: map[string]Property{}},
		Handler: func(ctx context.Context, sess Session, args Args) Result {
			if err := sess.Pause(); err != nil {
				return navFailure(err)
			}
			return Ok("briefing paused")
		},
	}
}

// ResumeTool resumes a paused briefing.
func ResumeTool() *Tool {
	return &Tool{
		Name:        "resume_briefing",
		Description: "Resume a paused briefing from where it left off.",
		Schema:      Schema{Properties: map[string]Property{}},
		Handler: func(ctx context.Context, sess Session, args Args) Result {
			if err := sess.Resume(); err != nil {
				return navFailure(err)
			}
			prog := sess.Reporter().GetProgress()
			if prog.CurrentItem != nil {
				return Okf("briefing resumed at %q", prog.CurrentItem.Subject)
			}
			return Ok("briefing resumed; all items are handled")
		},
	}
}

// StopTool ends the session.
func StopTool() *Tool {
	return &Tool{
		Name:        "stop_briefing",
		Description: "End the briefing session.",
		Schema: Schema{
			Properties: map[string]Property{
				"save_progress": {Type: "boolean", Description: "Persist handled items before exit.", Default: true},
			},
		},
		Handler: func(ctx context.Context, sess Session, args Args) Result {
			save := args.Bool("save_progress", true)
			if err := sess.Stop(save); err != nil {
				return navFailure(err)
			}
			if save {
				return Ok("briefing stopped, progress saved")
			}
			return Ok("briefing stopped")
		},
	}
}

// navFailure maps engine errors onto narratable failure results.
func navFailure(err error) Result {
	switch {
	case errors.Is(err, briefing.ErrStopped):
		return Fail("the briefing has already been stopped")
	case errors.Is(err, briefing.ErrAlreadyPaused):
		return Fail("the briefing is already paused")
	case errors.Is(err, briefing.ErrNotPaused):
		return Fail("the briefing is not paused")
	case errors.Is(err, briefing.ErrNoHistory):
		return Fail("nothing to go back to")
	default:
		return Fail(err.Error())
	}
}

// describePosition builds a success result naming where the cursor landed.
func describePosition(sess Session, cursor briefing.Cursor, action string) Result {
	prog := sess.Reporter().GetProgress()
	data := map[string]any{
		"topic_index": cursor.TopicIndex,
		"item_index":  cursor.ItemIndex,
		"complete":    prog.Complete,
		"remaining":   prog.Remaining,
	}
	if prog.Complete {
		return Okf("%s: briefing complete, %d items handled", action, prog.Total-prog.Remaining).WithData(data)
	}
	data["item_id"] = prog.CurrentItem.ID
	return Okf("%s: now at %q in topic %q", action, prog.CurrentItem.Subject, prog.CurrentTopic).WithData(data)
}
