package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/feedback"
	"github.com/colonyops/redline/internal/core/suggestion"
	"github.com/colonyops/redline/pkg/iojson"
)

type BatchCmd struct {
	flags   *Flags
	session string
	all     bool
}

// NewBatchCmd creates a new batch command.
func NewBatchCmd(flags *Flags) *BatchCmd {
	return &BatchCmd{flags: flags}
}

// Register adds the batch command to the application.
func (cmd *BatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "batch",
		Usage:     "Apply one action to several suggestions at once",
		ArgsUsage: "<action> [suggestion-id...]",
		Description: `Batch applies the same decision to several suggestions. With --all
the action targets every pending suggestion in the session. Edit is
not a batch action.

Examples:
  redline batch --session 4f1c approve s-1 s-2 s-7
  redline batch --session 4f1c --all reject`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "session",
				Aliases:     []string{"s"},
				Usage:       "session id",
				Required:    true,
				Destination: &cmd.session,
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "target every pending suggestion",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BatchCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("expected an action")
	}

	action, err := feedback.ParseAction(c.Args().Get(0))
	if err != nil {
		return err
	}

	reviews := cmd.flags.App.Reviews

	sess, agent, err := reviews.LoadSession(ctx, cmd.session)
	if err != nil {
		return err
	}

	ids := c.Args().Slice()[1:]
	if cmd.all {
		ids = nil
		for _, sug := range sess.Suggestions {
			if sug.Status == suggestion.StatusPending {
				ids = append(ids, sug.ID)
			}
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no suggestions to update")
	}

	result := reviews.BatchFeedback(ctx, sess, agent, ids, action)

	if err := iojson.Write(result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d of %d updates failed", len(result.Errors), len(ids))
	}
	return nil
}
