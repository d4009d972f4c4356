// Package feedback consumes reviewer decisions against a review session
// and decides when the accumulated rejection pattern warrants generating
// an alternative suggestion.
package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/internal/core/suggestion"
)

// DefaultRejectionThreshold is how many rejections in one category signal
// that the category needs rethinking rather than repeating a failed
// pattern.
const DefaultRejectionThreshold = 2

// Action is a reviewer decision on a suggestion.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionEdit    Action = "edit"
	ActionDismiss Action = "dismiss"
	ActionResolve Action = "resolve"
)

// ParseAction validates a reviewer-supplied action string.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	switch a {
	case ActionApprove, ActionReject, ActionEdit, ActionDismiss, ActionResolve:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", suggestion.ErrInvalidArgument, s)
}

// Status returns the suggestion status the action transitions to.
func (a Action) Status() suggestion.Status {
	switch a {
	case ActionApprove:
		return suggestion.StatusApproved
	case ActionReject:
		return suggestion.StatusRejected
	case ActionEdit:
		return suggestion.StatusEdited
	case ActionDismiss:
		return suggestion.StatusDismissed
	case ActionResolve:
		return suggestion.StatusResolved
	}
	return ""
}

// Request is one reviewer decision.
type Request struct {
	SessionID    string `json:"session_id"`
	SuggestionID string `json:"suggestion_id"`
	Action       Action `json:"action"`
	UserVersion  string `json:"user_version,omitempty"` // required for edit
}

// Result is the typed outcome of processing a decision. Domain errors are
// reported here rather than thrown across the package boundary so callers
// can render them without an exception handler.
type Result struct {
	Success              bool                     `json:"success"`
	Error                string                   `json:"error,omitempty"`
	Suggestion           suggestion.Suggestion    `json:"suggestion,omitempty"`
	AlternativeTriggered bool                     `json:"alternative_triggered"`
	Context              *suggestion.AgentContext `json:"context,omitempty"`
}

// Processor applies reviewer decisions to a session, maintains the
// session's AgentContext, and persists the outcome.
type Processor struct {
	store     suggestion.Store
	threshold int
	now       func() time.Time
	log       zerolog.Logger
}

// NewProcessor creates a processor persisting through store. A threshold
// < 1 falls back to DefaultRejectionThreshold.
func NewProcessor(store suggestion.Store, threshold int) *Processor {
	if threshold < 1 {
		threshold = DefaultRejectionThreshold
	}
	return &Processor{
		store:     store,
		threshold: threshold,
		now:       time.Now,
		log:       logging.Component("feedback"),
	}
}

// Process applies one reviewer decision to the session and context.
//
// The in-memory update is applied first; persistence failures leave it in
// place and are reported in the result, letting the caller reconcile on
// the next session load. A decision for a suggestion that was already
// reviewed overwrites its status and timestamp rather than erroring:
// upstream guards prevent resubmission, and overwrite keeps the operation
// idempotent.
func (p *Processor) Process(ctx context.Context, sess *suggestion.Session, agent *suggestion.AgentContext, req Request) Result {
	if _, err := ParseAction(string(req.Action)); err != nil {
		return failure(err)
	}
	if req.Action == ActionEdit && req.UserVersion == "" {
		return failure(fmt.Errorf("%w: edit requires a user version", suggestion.ErrInvalidArgument))
	}

	now := p.now()
	updated, err := sess.SetStatus(req.SuggestionID, req.Action.Status(), req.UserVersion, now)
	if err != nil {
		return failure(err)
	}

	alternative := false
	switch req.Action {
	case ActionApprove:
		agent.RecordApproval(updated.Category)
	case ActionReject:
		agent.RecordRejection(suggestion.RejectionPattern{
			SuggestionID:  updated.ID,
			Category:      updated.Category,
			OriginalIssue: updated.Issue,
			RejectedAt:    now,
		})
		alternative = agent.RejectionCount(updated.Category) >= p.threshold
		if alternative {
			p.log.Info().
				Str("session_id", req.SessionID).
				Str("category", updated.Category).
				Int("rejections", agent.RejectionCount(updated.Category)).
				Msg("rejection threshold reached, alternative suggestion warranted")
		}
	case ActionEdit:
		agent.RecordEdit(updated.ID, req.UserVersion)
	}

	result := Result{
		Success:              true,
		Suggestion:           updated,
		AlternativeTriggered: alternative,
		Context:              agent,
	}

	if err := p.persist(ctx, sess, updated); err != nil {
		p.log.Error().Err(err).
			Str("session_id", req.SessionID).
			Str("suggestion_id", req.SuggestionID).
			Msg("persisting feedback failed")
		result.Success = false
		result.Error = err.Error()
	}

	return result
}

// persist writes the suggestion's new status and then the session row.
// Not retried here: retries are caller policy.
func (p *Processor) persist(ctx context.Context, sess *suggestion.Session, s suggestion.Suggestion) error {
	if err := p.store.UpdateSuggestion(ctx, sess.ID, s); err != nil {
		return fmt.Errorf("update suggestion: %w", err)
	}
	if err := p.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
