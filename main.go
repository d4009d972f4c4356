package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/commands"
	"github.com/colonyops/redline/internal/core/config"
	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/internal/data/db"
	"github.com/colonyops/redline/internal/data/stores"
	"github.com/colonyops/redline/internal/redline"
	"github.com/colonyops/redline/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
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
		logCloser func()
		database  *db.DB
	)

	flags := &commands.Flags{App: &redline.App{}}

	app := &cli.Command{
		Name:      "redline",
		Usage:     "Review and apply AI-generated document suggestions",
		UsageText: "redline [global options] command [command options]",
		Description: `Redline tracks review sessions for AI-generated document suggestions.

Import suggestions from a generator, record approve/reject/edit decisions,
and fold the accepted fixes back into the document. Rejections are tracked
per category so the generator can be told to try a different approach.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("REDLINE_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/redline.log)",
				Sources:     cli.EnvVars("REDLINE_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("REDLINE_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("REDLINE_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/redline.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "redline.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			cfg.DataDir = flags.DataDir
			flags.Config = cfg

			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config: %w", err)
			}

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			// Open database connection, recovering once from a corrupt file
			database, err = db.Open(cfg.DataDir)
			if err != nil && stores.IsCorruptionError(err) {
				log.Warn().Err(err).Msg("database corrupt, removing and recreating")
				if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
					return ctx, fmt.Errorf("recover database: %w", rerr)
				}
				database, err = db.Open(cfg.DataDir)
			}
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*flags.App = *redline.NewApp(stores.NewSessionStore(database), cfg, database)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewImportCmd(flags).Register(app)
	app = commands.NewDocsCmd(flags).Register(app)
	app = commands.NewLsCmd(flags).Register(app)
	app = commands.NewShowCmd(flags).Register(app)
	app = commands.NewFeedbackCmd(flags).Register(app)
	app = commands.NewBatchCmd(flags).Register(app)
	app = commands.NewDiffCmd(flags).Register(app)
	app = commands.NewApplyCmd(flags).Register(app)
	app = commands.NewWatchCmd(flags).Register(app)
	app = commands.NewRmCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
