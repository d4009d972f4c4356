package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/redline/internal/core/diffsession"
	"github.com/colonyops/redline/internal/core/hunk"
	"github.com/colonyops/redline/internal/redline"
	"github.com/colonyops/redline/pkg/iojson"
)

type DiffCmd struct {
	flags   *Flags
	session string
	reject  string
	apply   bool
	json    bool
}

// NewDiffCmd creates a new diff command.
func NewDiffCmd(flags *Flags) *DiffCmd {
	return &DiffCmd{flags: flags}
}

// Register adds the diff command to the application.
func (cmd *DiffCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "diff",
		Usage: "Preview the session's changes as reconcilable hunks",
		Description: `Diff compares the document against the content that apply would
produce and lists the changed line ranges. Hunks can be rejected by
their 1-based index before confirming, which reverts those ranges to
the original text.

With --apply the surviving changes are printed as the final content;
without it diff only previews.

Examples:
  redline diff --session 4f1c
  redline diff --session 4f1c --reject 2,3 --apply`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "session",
				Aliases:     []string{"s"},
				Usage:       "session id",
				Required:    true,
				Destination: &cmd.session,
			},
			&cli.StringFlag{
				Name:        "reject",
				Usage:       "comma-separated hunk indexes to revert",
				Destination: &cmd.reject,
			},
			&cli.BoolFlag{
				Name:        "apply",
				Usage:       "confirm the remaining changes and print the final content",
				Destination: &cmd.apply,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output hunks as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DiffCmd) run(ctx context.Context, c *cli.Command) error {
	reviews := cmd.flags.App.Reviews

	sess, _, err := reviews.LoadSession(ctx, cmd.session)
	if err != nil {
		return err
	}

	content, err := redline.ReadDocument(sess.DocumentPath)
	if err != nil {
		return err
	}

	proposed := reviews.ApplySession(sess, content)

	review := diffsession.New()
	review.Enter(content, proposed, nil)

	if cmd.reject != "" {
		if err := cmd.rejectHunks(review); err != nil {
			review.Exit(false)
			return err
		}
	}

	original, _ := review.OriginalContent()
	live, _ := review.ProposedContent()
	hunks := hunk.Compute(original, live)

	if cmd.apply {
		final := review.Exit(true)
		_, _ = fmt.Fprint(c.Root().Writer, final)
		return nil
	}
	review.Exit(false)

	if cmd.json {
		return iojson.Write(hunks)
	}

	if len(hunks) == 0 {
		_, _ = fmt.Fprintln(c.Root().Writer, "No changes")
		return nil
	}
	for i, h := range hunks {
		_, _ = fmt.Fprintf(c.Root().Writer, "%d: -%d,%d +%d,%d\n",
			i+1, h.OriginalStart, h.OriginalEnd, h.ModifiedStart, h.ModifiedEnd)
	}
	return nil
}

// rejectHunks reverts the selected hunk indexes one at a time, recomputing
// the hunk set after each revert so later indexes stay meaningful against
// the original listing.
func (cmd *DiffCmd) rejectHunks(review *diffsession.Session) error {
	indexes, err := parseIndexes(cmd.reject)
	if err != nil {
		return err
	}

	original, _ := review.OriginalContent()
	proposed, _ := review.ProposedContent()
	hunks := hunk.Compute(original, proposed)

	// Reject bottom-up so earlier hunks keep their coordinates.
	for i := len(hunks) - 1; i >= 0; i-- {
		if !indexes[i+1] {
			continue
		}
		proposed = hunk.Reject(original, proposed, hunks[i])
	}
	return review.UpdateContent(original, proposed)
}

func parseIndexes(s string) (map[int]bool, error) {
	indexes := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid hunk index %q", part)
		}
		indexes[n] = true
	}
	return indexes, nil
}
