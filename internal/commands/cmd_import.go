package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/internal/core/suggestion"
	"github.com/colonyops/redline/internal/redline"
	"github.com/colonyops/redline/pkg/iojson"
)

type ImportCmd struct {
	flags  *Flags
	reader iojson.FileReader[[]suggestion.Suggestion]
	doc    string
}

// NewImportCmd creates a new import command.
func NewImportCmd(flags *Flags) *ImportCmd {
	return &ImportCmd{flags: flags}
}

// Register adds the import command to the application.
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "import",
		Usage: "Create a review session from generated suggestions",
		Description: `Import reads a JSON array of suggestions produced by an external
generator and creates a review session for the document. Suggestions
without ids get one assigned, and every suggestion starts pending.

Any prior session recorded against different document content is removed.

Examples:
  redline import --doc plans/auth.md -f suggestions.json
  generator plans/auth.md | redline import --doc plans/auth.md`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "doc",
				Usage:       "document the suggestions apply to",
				Required:    true,
				Destination: &cmd.doc,
			},
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	sugs, err := cmd.reader.Read()
	if err != nil {
		return fmt.Errorf("read suggestions: %w", err)
	}
	if len(sugs) == 0 {
		return fmt.Errorf("no suggestions provided")
	}

	docPath, err := cmd.flags.ResolveDocument(cmd.doc)
	if err != nil {
		return err
	}
	ctx = logging.WithDocument(ctx, docPath)

	content, err := redline.ReadDocument(docPath)
	if err != nil {
		return err
	}

	sess, err := cmd.flags.App.Reviews.CreateSession(ctx, docPath, content, sugs)
	if err != nil {
		return err
	}

	return iojson.Write(sess)
}

// ResolveDocument turns a document argument into an absolute path,
// resolving relative paths against the context directory when the file is
// not found relative to the working directory.
func (f *Flags) ResolveDocument(doc string) (string, error) {
	if filepath.IsAbs(doc) {
		return doc, nil
	}

	abs, err := filepath.Abs(doc)
	if err == nil {
		if _, statErr := redline.ReadDocument(abs); statErr == nil {
			return abs, nil
		}
	}

	inContext := filepath.Join(f.Config.ContextDir, doc)
	abs, err = filepath.Abs(inContext)
	if err != nil {
		return "", fmt.Errorf("resolve document path: %w", err)
	}
	return abs, nil
}
