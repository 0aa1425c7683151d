package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/briefly/internal/briefly"
	"github.com/colonyops/briefly/internal/briefly/sweep"
	"github.com/colonyops/briefly/internal/commands"
	"github.com/colonyops/briefly/internal/core/config"
	"github.com/colonyops/briefly/internal/core/eventbus"
	"github.com/colonyops/briefly/internal/core/kv"
	"github.com/colonyops/briefly/internal/data/db"
	"github.com/colonyops/briefly/internal/data/memkv"
	"github.com/colonyops/briefly/internal/data/stores"
	"github.com/colonyops/briefly/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		brieflyApp  = &briefly.App{}
		database    *db.DB
		busCancel   context.CancelFunc
		sweepCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "briefly",
		Usage:     "Session-state controller for voice-driven inbox triage",
		UsageText: "briefly [global options] command [command options]",
		Description: `Briefly tracks one briefing session at a time: an ordered queue of items
grouped into topics, driven by short voice intents resolved into tool
calls. It keeps the traversal consistent while topics grow mid-session
and persists handled-item records across restarts.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("BRIEFLY_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/briefly.log)",
				Sources:     cli.EnvVars("BRIEFLY_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("BRIEFLY_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("BRIEFLY_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/briefly.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "briefly.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Open the database; fall back to the in-memory store so a
			// broken data dir degrades to a non-durable session instead
			// of refusing to run.
			var store kv.KV
			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeoutMS,
			}
			database, err = db.Open(cfg.DatabaseDir(), dbOpts)
			if err != nil {
				log.Warn().Err(err).Msg("database unavailable, using in-memory store")
				store = memkv.New()
			} else {
				kvStore := stores.NewKVStore(database)
				store = kvStore

				// Background sweep of expired records
				sweepCtx, cancel := context.WithCancel(context.Background())
				sweepCancel = cancel
				go sweep.Start(sweepCtx, kvStore, 5*time.Minute)
			}

			bus := eventbus.New(64)
			eventbus.RegisterDebugLogger(bus, log.Logger)

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Run(busCtx)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*brieflyApp = *briefly.NewApp(cfg, database, store, bus, log.Logger)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sweepCancel != nil {
				sweepCancel()
			}
			if busCancel != nil {
				busCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewRunCmd(flags, brieflyApp).Register(app)
	app = commands.NewRecordsCmd(flags, brieflyApp).Register(app)
	app = commands.NewPruneCmd(flags, brieflyApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
