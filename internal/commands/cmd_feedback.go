package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/feedback"
	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/pkg/iojson"
)

type FeedbackCmd struct {
	flags       *Flags
	session     string
	userVersion string
}

// NewFeedbackCmd creates a new feedback command.
func NewFeedbackCmd(flags *Flags) *FeedbackCmd {
	return &FeedbackCmd{flags: flags}
}

// Register adds the feedback command to the application.
func (cmd *FeedbackCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "feedback",
		Usage:     "Record a review decision for one suggestion",
		ArgsUsage: "<action> <suggestion-id>",
		Description: `Feedback records a single reviewer decision. Actions are approve,
reject, edit, dismiss, and resolve. Edit requires --text with the
reviewer's version of the fix.

Examples:
  redline feedback --session 4f1c approve s-12
  redline feedback --session 4f1c edit s-12 --text "Use argon2id here."`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "session",
				Aliases:     []string{"s"},
				Usage:       "session id",
				Required:    true,
				Destination: &cmd.session,
			},
			&cli.StringFlag{
				Name:        "text",
				Usage:       "replacement text for the edit action",
				Destination: &cmd.userVersion,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FeedbackCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected <action> <suggestion-id>, got %d arguments", c.Args().Len())
	}

	action, err := feedback.ParseAction(c.Args().Get(0))
	if err != nil {
		return err
	}

	ctx = logging.WithSessionID(ctx, cmd.session)
	reviews := cmd.flags.App.Reviews

	sess, agent, err := reviews.LoadSession(ctx, cmd.session)
	if err != nil {
		return err
	}

	result := reviews.Feedback(ctx, sess, agent, feedback.Request{
		SessionID:    cmd.session,
		SuggestionID: c.Args().Get(1),
		Action:       action,
		UserVersion:  cmd.userVersion,
	})

	if err := iojson.Write(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("feedback not recorded: %s", result.Error)
	}
	return nil
}
