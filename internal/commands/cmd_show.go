package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/suggestion"
	"github.com/colonyops/redline/pkg/iojson"
)

type ShowCmd struct {
	flags   *Flags
	session string
	doc     string
}

// NewShowCmd creates a new show command.
func NewShowCmd(flags *Flags) *ShowCmd {
	return &ShowCmd{flags: flags}
}

// Register adds the show command to the application.
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "show",
		Usage: "Show a review session with its suggestions and learned context",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "session",
				Aliases:     []string{"s"},
				Usage:       "session id (defaults to the latest session for --doc)",
				Destination: &cmd.session,
			},
			&cli.StringFlag{
				Name:        "doc",
				Usage:       "document to show the latest session for",
				Destination: &cmd.doc,
			},
		},
		Action: cmd.run,
	})

	return app
}

// showPayload is the JSON shape printed by show.
type showPayload struct {
	Session  *suggestion.Session      `json:"session"`
	Counts   map[suggestion.Status]int `json:"counts"`
	Approved []string                 `json:"approved_categories,omitempty"`
	Rejected []string                 `json:"rejected_categories,omitempty"`
	Context  *suggestion.AgentContext `json:"context"`
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	sess, agent, err := cmd.load(ctx)
	if errors.Is(err, suggestion.ErrSessionNotFound) {
		return fmt.Errorf("no review session found")
	}
	if err != nil {
		return err
	}

	return iojson.Write(showPayload{
		Session:  sess,
		Counts:   sess.CountByStatus(),
		Approved: agent.Approved(),
		Rejected: agent.Rejected(),
		Context:  agent,
	})
}

func (cmd *ShowCmd) load(ctx context.Context) (*suggestion.Session, *suggestion.AgentContext, error) {
	reviews := cmd.flags.App.Reviews

	if cmd.session != "" {
		return reviews.LoadSession(ctx, cmd.session)
	}
	if cmd.doc != "" {
		docPath, err := cmd.flags.ResolveDocument(cmd.doc)
		if err != nil {
			return nil, nil, err
		}
		return reviews.LoadForDocument(ctx, docPath)
	}
	return nil, nil, fmt.Errorf("either --session or --doc is required")
}
