package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/briefly/internal/briefly"
	"github.com/colonyops/briefly/internal/printer"
	"github.com/urfave/cli/v3"
)

type PruneCmd struct {
	flags *Flags
	app   *briefly.App

	user string
}

// NewPruneCmd creates a new prune command.
func NewPruneCmd(flags *Flags, app *briefly.App) *PruneCmd {
	return &PruneCmd{flags: flags, app: app}
}

// Register adds the prune command to the application.
func (cmd *PruneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "prune",
		Usage:     "Delete a user's persisted status records",
		UsageText: "briefly prune --user <id>",
		Description: `Removes every durable status record for the user, ahead of its retention
expiry. The next session will re-brief items that would otherwise have
been excluded as already handled.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "user id to prune",
				Required:    true,
				Destination: &cmd.user,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PruneCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	count, err := cmd.app.Records.Prune(ctx, cmd.user)
	if err != nil {
		return fmt.Errorf("prune records: %w", err)
	}

	if count == 0 {
		p.Infof("no records to prune for %s", cmd.user)
		return nil
	}

	p.Successf("pruned %d record(s)", count)

	return nil
}
