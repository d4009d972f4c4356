package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/redline"
)

type WatchCmd struct {
	flags *Flags
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "watch",
		Usage: "Watch the context directory and invalidate stale sessions",
		Description: `Watch monitors the context directory for document changes. When a
reviewed document is edited on disk, sessions recorded against its
old content are removed so nobody reviews stale suggestions.

Runs until interrupted.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	watcher, err := redline.NewDocumentWatcher(cfg.ContextDir, cfg.Documents, cmd.flags.App.Reviews)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(c.Root().Writer, "watching %s\n", cfg.ContextDir)

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
