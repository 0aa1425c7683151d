package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/briefly/internal/briefly"
	"github.com/colonyops/briefly/internal/core/briefing"
	"github.com/colonyops/briefly/internal/core/eventbus"
	"github.com/colonyops/briefly/internal/core/tools"
	"github.com/colonyops/briefly/internal/printer"
	"github.com/colonyops/briefly/pkg/iojson"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type RunCmd struct {
	flags *Flags
	app   *briefly.App

	user       string
	topicsPath string
	calls      iojson.StreamReader[toolCall]
}

// NewRunCmd creates a new run command.
func NewRunCmd(flags *Flags, app *briefly.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application.
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Drive a briefing session from a stream of tool calls",
		UsageText: "briefly run --user <id> --topics <file> [options]",
		Description: `Starts a briefing session over a topics file and consumes tool calls as a
JSON stream, one object per call:

  {"tool": "next_item"}
  {"tool": "skip_topic", "args": {"reason": "not now"}}
  {"merge_topics": [{"label": "Urgent", "items": [...]}]}

Each call produces a JSON response with the tool result, the progress
snapshot, and the cursor context block for the next narration turn.
The stream ends at EOF or after stop_briefing; handled items are then
flushed to the durable store unless stop_briefing said otherwise.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "user id the session briefs",
				Required:    true,
				Destination: &cmd.user,
			},
			&cli.StringFlag{
				Name:        "topics",
				Aliases:     []string{"t"},
				Usage:       "path to the topics YAML file",
				Required:    true,
				Destination: &cmd.topicsPath,
			},
			cmd.calls.Flag("calls", "path to a JSON tool-call stream (reads from stdin if not provided)"),
		},
		Action: cmd.run,
	})

	return app
}

// toolCall is one decoded stream entry. Exactly one of Tool or MergeTopics
// is set: voice turns dispatch tools, source adapters push merges.
type toolCall struct {
	Tool        string       `json:"tool,omitempty"`
	Args        tools.Args   `json:"args,omitempty"`
	MergeTopics []topicEntry `json:"merge_topics,omitempty"`
}

// turnResponse is written after every stream entry.
type turnResponse struct {
	Result   *tools.Result     `json:"result,omitempty"`
	Merged   int               `json:"merged,omitempty"`
	Progress briefing.Progress `json:"progress"`
	Context  string            `json:"context,omitempty"`
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	// Stdout carries the JSON response stream; status lines go to stderr.
	p := printer.New(os.Stderr)

	topics, err := LoadTopics(cmd.topicsPath)
	if err != nil {
		return err
	}

	stream, err := cmd.calls.Open()
	if err != nil {
		return err
	}
	defer func() { _ = stream.Close() }()

	session := cmd.app.NewSession(cmd.user, topics, nil, log.Logger)
	defer session.Close()

	watchSession(cmd.app.Bus, p)

	if !cmd.app.Durable() {
		p.Warnf("database unavailable; progress will not survive this process")
	}
	p.Infof("session %s started for %s", session.ID(), cmd.user)

	if err := cmd.loop(ctx, c, session, stream); err != nil {
		return err
	}

	if session.SaveOnExit() {
		written, err := session.Flush(ctx)
		if err != nil {
			p.Errorf("flush failed: %s", err)
			return err
		}
		p.Successf("session %s finished, %d record(s) saved", session.ID(), written)
	} else {
		p.Infof("session %s finished, progress discarded", session.ID())
	}

	return nil
}

func (cmd *RunCmd) loop(ctx context.Context, c *cli.Command, session *briefly.SessionService, stream *iojson.Stream[toolCall]) error {
	enc := json.NewEncoder(c.Root().Writer)

	for {
		call, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode tool call: %w", err)
		}

		resp, stopped, err := cmd.dispatch(ctx, session, call)
		if err != nil {
			_ = iojson.WriteError(err.Error(), map[string]any{"tool": call.Tool})
			continue
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if stopped {
			return nil
		}
	}
}

func (cmd *RunCmd) dispatch(ctx context.Context, session *briefly.SessionService, call toolCall) (turnResponse, bool, error) {
	if len(call.MergeTopics) > 0 {
		if call.Tool != "" {
			return turnResponse{}, false, fmt.Errorf("a call cannot carry both tool and merge_topics")
		}

		topics, err := convertTopics(call.MergeTopics)
		if err != nil {
			return turnResponse{}, false, err
		}

		added := session.AddTopics(topics)
		return turnResponse{
			Merged:   added,
			Progress: session.Reporter().GetProgress(),
			Context:  session.Reporter().BuildCursorContext(),
		}, false, nil
	}

	if call.Tool == "" {
		return turnResponse{}, false, fmt.Errorf("call has neither tool nor merge_topics")
	}

	// Failure results flow back to the caller as data, not as errors.
	result, _ := session.Execute(ctx, call.Tool, call.Args)

	resp := turnResponse{
		Result:   &result,
		Progress: session.Reporter().GetProgress(),
	}
	stopped := result.Success && call.Tool == "stop_briefing"
	if !stopped {
		resp.Context = session.Reporter().BuildCursorContext()
	}

	return resp, stopped, nil
}

// watchSession mirrors session lifecycle events as status lines on stderr
// so a human tailing the session sees merges and skips as they land.
func watchSession(bus *eventbus.EventBus, p *printer.Printer) {
	bus.SubscribeTopicsMerged(func(pl eventbus.TopicsMergedPayload) {
		p.Infof("merged %d new item(s) into the queue", pl.Added)
	})
	bus.SubscribeTopicSkipped(func(pl eventbus.TopicSkippedPayload) {
		p.Mutedf("skipped %d item(s) in %s", pl.Skipped, pl.TopicLabel)
	})
	bus.SubscribeRecordsFlushed(func(pl eventbus.RecordsFlushedPayload) {
		p.Mutedf("wrote %d record(s) for session %s", pl.Written, pl.SessionID)
	})
}
