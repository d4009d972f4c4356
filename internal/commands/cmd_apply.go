package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/redline"
)

type ApplyCmd struct {
	flags   *Flags
	session string
	write   bool
}

// NewApplyCmd creates a new apply command.
func NewApplyCmd(flags *Flags) *ApplyCmd {
	return &ApplyCmd{flags: flags}
}

// Register adds the apply command to the application.
func (cmd *ApplyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "apply",
		Usage: "Fold approved and edited fixes into the document",
		Description: `Apply rewrites the session's document with every approved fix and
every reviewer edit folded in. The patched content goes to stdout
unless --write updates the file in place.

Examples:
  redline apply --session 4f1c > reviewed.md
  redline apply --session 4f1c --write`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "session",
				Aliases:     []string{"s"},
				Usage:       "session id",
				Required:    true,
				Destination: &cmd.session,
			},
			&cli.BoolFlag{
				Name:        "write",
				Aliases:     []string{"w"},
				Usage:       "write the patched content back to the document",
				Destination: &cmd.write,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ApplyCmd) run(ctx context.Context, c *cli.Command) error {
	reviews := cmd.flags.App.Reviews

	sess, _, err := reviews.LoadSession(ctx, cmd.session)
	if err != nil {
		return err
	}

	content, err := redline.ReadDocument(sess.DocumentPath)
	if err != nil {
		return err
	}

	if redline.HashContent(content) != sess.ContentHash {
		return fmt.Errorf("document %s changed since the session was created", sess.DocumentPath)
	}

	patched := reviews.ApplySession(sess, content)

	if cmd.write {
		if err := os.WriteFile(sess.DocumentPath, []byte(patched), 0o644); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "updated %s\n", sess.DocumentPath)
		return nil
	}

	_, _ = fmt.Fprint(c.Root().Writer, patched)
	return nil
}
