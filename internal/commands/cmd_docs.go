package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/redline"
	"github.com/colonyops/redline/pkg/iojson"
)

type DocsCmd struct {
	flags  *Flags
	json   bool
	latest bool
}

// NewDocsCmd creates a new docs command.
func NewDocsCmd(flags *Flags) *DocsCmd {
	return &DocsCmd{flags: flags}
}

// Register adds the docs command to the application.
func (cmd *DocsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "docs",
		Usage: "List reviewable documents in the context directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.json,
			},
			&cli.BoolFlag{
				Name:        "latest",
				Usage:       "print only the most recently modified document",
				Destination: &cmd.latest,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DocsCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	docs, err := redline.DiscoverDocuments(cfg.ContextDir, cfg.Documents)
	if err != nil {
		return err
	}

	if cmd.latest {
		doc, ok := redline.Latest(docs)
		if !ok {
			return fmt.Errorf("no reviewable documents in %s", cfg.ContextDir)
		}
		if cmd.json {
			return iojson.Write(doc)
		}
		_, _ = fmt.Fprintln(c.Root().Writer, doc.Path)
		return nil
	}

	if cmd.json {
		return iojson.Write(docs)
	}

	if len(docs) == 0 {
		_, _ = fmt.Fprintln(c.Root().Writer, "No reviewable documents found")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DOCUMENT\tSIZE\tMODIFIED")
	for _, d := range docs {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", d.RelPath, d.Size, d.ModifiedAt.Format(time.DateTime))
	}
	return w.Flush()
}
