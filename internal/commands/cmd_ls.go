package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	json  bool
}

// NewLsCmd creates a new ls command.
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application.
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "ls",
		Usage: "List review sessions",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	sessions, err := cmd.flags.App.Reviews.Sessions(ctx)
	if err != nil {
		return err
	}

	if cmd.json {
		return iojson.Write(sessions)
	}

	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(c.Root().Writer, "No review sessions found")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDOCUMENT\tCREATED\tUPDATED")
	for _, s := range sessions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			s.ID,
			s.DocumentPath,
			s.CreatedAt.Format(time.DateTime),
			s.LastUpdatedAt.Format(time.DateTime),
		)
	}
	return w.Flush()
}
