package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type RmCmd struct {
	flags *Flags
}

// NewRmCmd creates a new rm command.
func NewRmCmd(flags *Flags) *RmCmd {
	return &RmCmd{flags: flags}
}

// Register adds the rm command to the application.
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete review sessions",
		ArgsUsage: "<session-id...>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one session id")
	}

	for _, id := range c.Args().Slice() {
		if err := cmd.flags.App.Reviews.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "deleted %s\n", id)
	}
	return nil
}
