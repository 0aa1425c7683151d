package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/briefly/internal/briefly"
	"github.com/colonyops/briefly/internal/printer"
	"github.com/colonyops/briefly/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type RecordsCmd struct {
	flags *Flags
	app   *briefly.App

	user   string
	asJSON bool
}

// NewRecordsCmd creates a new records command.
func NewRecordsCmd(flags *Flags, app *briefly.App) *RecordsCmd {
	return &RecordsCmd{flags: flags, app: app}
}

// Register adds the records command to the application.
func (cmd *RecordsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "records",
		Usage:     "List persisted status records for a user",
		UsageText: "briefly records --user <id> [options]",
		Description: `Shows the durable status records written by past sessions. External
callers consult these to exclude already-handled items from a future
session; records expire on their own after the retention window.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "user id to inspect",
				Required:    true,
				Destination: &cmd.user,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit records as JSON",
				Destination: &cmd.asJSON,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RecordsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	records, err := cmd.app.Records.List(ctx, cmd.user)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	if cmd.asJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, records)
	}

	if len(records) == 0 {
		p.Infof("no records for %s", cmd.user)
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %s", rec.ItemID, rec.Status)
		if rec.Action != "" {
			line += "  (" + rec.Action + ")"
		}
		p.Printf("%s", line)
		p.Mutedf("at %s", rec.Timestamp.Format("2006-01-02 15:04:05"))
	}
	p.Successf("%d record(s)", len(records))

	return nil
}
