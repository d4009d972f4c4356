// Package diffsession holds the state of reviewing one suggestion's
// proposed change against the original document.
package diffsession

import "errors"

// ErrNotReviewing is returned by operations that require an active review.
var ErrNotReviewing = errors.New("no active diff review")

// Location is an optional hint for where the reviewed change sits in the
// document.
type Location struct {
	LineNumber     int    `json:"line_number,omitempty"`
	SectionHeading string `json:"section_heading,omitempty"`
}

// Session is the state machine for reviewing a single suggestion:
// Idle -> Reviewing (with an editing sub-flag) -> Idle.
//
// At most one review is active per Session value, and callers hold one
// Session per reviewer: entering a new review while another is active
// collapses the previous one, discarding its unconfirmed edits. That lossy
// transition is intentional.
type Session struct {
	active   bool
	editing  bool
	original string
	proposed string
	location *Location

	// lastFinal is the content returned by the most recent exit, so that
	// Exit while idle can stay a harmless no-op for callers that do not
	// track state defensively.
	lastFinal string
	dirty     bool
}

// New returns an idle session.
func New() *Session {
	return &Session{}
}

// Active returns true while a review is in progress.
func (s *Session) Active() bool { return s.active }

// Editing returns true while the reviewer is freely modifying the
// proposed text.
func (s *Session) Editing() bool { return s.editing }

// Location returns the location hint for the active review, or nil.
func (s *Session) Location() *Location { return s.location }

// Dirty reports whether an exit with applyChanges=true has occurred, which
// is when the owning document needs to be rewritten.
func (s *Session) Dirty() bool { return s.dirty }

// Enter starts reviewing a suggestion. If a review is already active it is
// force-exited without applying, so two simultaneous active diffs can
// never exist.
func (s *Session) Enter(original, proposed string, loc *Location) {
	if s.active {
		s.Exit(false)
	}

	s.active = true
	s.editing = false
	s.original = original
	s.proposed = proposed
	s.location = loc
}

// UpdateContent replaces the stored original/proposed pair while
// reviewing. Used after a hunk-level accept or reject, where the original
// side reflects hunks already folded in and the proposed side the
// remainder.
func (s *Session) UpdateContent(original, proposed string) error {
	if !s.active {
		return ErrNotReviewing
	}
	s.original = original
	s.proposed = proposed
	return nil
}

// StartEdit lets the reviewer freely modify the proposed text.
func (s *Session) StartEdit() error {
	if !s.active {
		return ErrNotReviewing
	}
	s.editing = true
	return nil
}

// SetProposed replaces the proposed text with the reviewer's edit.
func (s *Session) SetProposed(text string) error {
	if !s.active || !s.editing {
		return ErrNotReviewing
	}
	s.proposed = text
	return nil
}

// Exit ends the review and returns the final content: the proposed text
// when applyChanges is true, the untouched original otherwise.
//
// Calling Exit while idle is a no-op that returns the last known content.
func (s *Session) Exit(applyChanges bool) string {
	if !s.active {
		return s.lastFinal
	}

	final := s.original
	if applyChanges {
		final = s.proposed
		s.dirty = true
	}

	s.active = false
	s.editing = false
	s.original = ""
	s.proposed = ""
	s.location = nil
	s.lastFinal = final

	return final
}

// ProposedContent returns the live proposed text (possibly
// reviewer-edited) while reviewing. The second return is false when idle.
func (s *Session) ProposedContent() (string, bool) {
	if !s.active {
		return "", false
	}
	return s.proposed, true
}

// OriginalContent returns the original text while reviewing.
func (s *Session) OriginalContent() (string, bool) {
	if !s.active {
		return "", false
	}
	return s.original, true
}
