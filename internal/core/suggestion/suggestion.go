// Package suggestion defines the suggestion review domain types and
// persistence interface.
package suggestion

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for suggestion operations.
var (
	ErrNotFound        = errors.New("suggestion not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSessionNotFound = errors.New("review session not found")
)

// Status represents the review state of a suggestion.
//
// Pending is the only initial value. Every other status is terminal for a
// given suggestion: re-review is modeled as a new suggestion, not a status
// cycle. Re-applying the same terminal status is allowed and overwrites
// ReviewedAt.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusEdited    Status = "edited"
	StatusDismissed Status = "dismissed"
	StatusResolved  Status = "resolved"
)

// Valid returns true if the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusEdited, StatusDismissed, StatusResolved:
		return true
	}
	return false
}

// Terminal returns true for every status except pending.
func (s Status) Terminal() bool {
	return s.Valid() && s != StatusPending
}

// Suggestion is a single AI-proposed change to a document.
//
// Location hints form a ladder: LineStart/LineEnd (1-indexed, inclusive,
// 0 = unset) are the most precise anchor, Section a structural one,
// TextSnippet a textual fallback. The patcher tries them in that order.
type Suggestion struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	Section      string     `json:"section,omitempty"`
	LineStart    int        `json:"line_start,omitempty"`
	LineEnd      int        `json:"line_end,omitempty"`
	TextSnippet  string     `json:"text_snippet,omitempty"`
	Issue        string     `json:"issue"`
	SuggestedFix string     `json:"suggested_fix"`
	Status       Status     `json:"status"`
	UserVersion  string     `json:"user_version,omitempty"` // set iff Status == edited
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}

// Reviewed returns true once the suggestion has left pending.
func (s Suggestion) Reviewed() bool {
	return s.Status.Terminal()
}

// Session owns the ordered list of suggestions for one review run of a
// document. Insertion order is display order; ids are unique within a
// session.
type Session struct {
	ID            string       `json:"id"`
	DocumentPath  string       `json:"document_path"`
	ContentHash   string       `json:"content_hash"` // SHA256 hash of document content
	Suggestions   []Suggestion `json:"suggestions"`
	CreatedAt     time.Time    `json:"created_at"`
	LastUpdatedAt time.Time    `json:"last_updated_at"`
}

// Find returns the suggestion with the given id.
func (sess *Session) Find(id string) (Suggestion, bool) {
	for _, s := range sess.Suggestions {
		if s.ID == id {
			return s, true
		}
	}
	return Suggestion{}, false
}

// SetStatus transitions a suggestion to the given status, stamping
// ReviewedAt and bumping the session's LastUpdatedAt.
//
// Setting StatusEdited requires a non-empty userVersion; any other status
// clears UserVersion so it is present iff the suggestion is edited. The
// element is replaced in place, preserving list order.
func (sess *Session) SetStatus(id string, status Status, userVersion string, now time.Time) (Suggestion, error) {
	if !status.Valid() {
		return Suggestion{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}
	if status == StatusEdited && userVersion == "" {
		return Suggestion{}, fmt.Errorf("%w: edited status requires a user version", ErrInvalidArgument)
	}

	for i := range sess.Suggestions {
		if sess.Suggestions[i].ID != id {
			continue
		}

		s := &sess.Suggestions[i]
		s.Status = status
		if status == StatusEdited {
			s.UserVersion = userVersion
		} else {
			s.UserVersion = ""
		}
		if status != StatusPending {
			t := now
			s.ReviewedAt = &t
		}
		sess.LastUpdatedAt = now

		return *s, nil
	}

	return Suggestion{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// SetStatusMany applies the same transition to several suggestions,
// used for approve-all / reject-all batch operations.
//
// Updates are applied optimistically in order; an unknown id does not roll
// back previously-applied updates. The returned slice holds the
// suggestions that were updated, and the error joins one ErrNotFound per
// missing id.
func (sess *Session) SetStatusMany(ids []string, status Status, now time.Time) ([]Suggestion, error) {
	var (
		updated []Suggestion
		errs    []error
	)

	for _, id := range ids {
		s, err := sess.SetStatus(id, status, "", now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		updated = append(updated, s)
	}

	return updated, errors.Join(errs...)
}

// CountByStatus returns the number of suggestions per status.
func (sess *Session) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, s := range sess.Suggestions {
		counts[s.Status]++
	}
	return counts
}
