package suggestion

import (
	"sort"
	"time"
)

// RejectionPattern records one rejection for preference learning.
type RejectionPattern struct {
	SuggestionID  string    `json:"suggestion_id"`
	Category      string    `json:"category"`
	OriginalIssue string    `json:"original_issue"`
	RejectedAt    time.Time `json:"rejected_at"`
}

// AgentContext accumulates the reviewer's decision history for one session.
//
// It is an explicit value passed into and out of feedback processing rather
// than shared state, so one engine instance can serve several sessions
// without cross-session leakage. It grows monotonically and is never
// mutated retroactively; it can always be rebuilt from the session's
// suggestion history.
type AgentContext struct {
	ApprovedCategories map[string]struct{} `json:"-"`
	RejectedCategories map[string]struct{} `json:"-"`
	UserEdits          map[string]string   `json:"user_edits,omitempty"`
	RejectionPatterns  []RejectionPattern  `json:"rejection_patterns,omitempty"`
}

// NewAgentContext returns an empty context for a fresh session.
func NewAgentContext() *AgentContext {
	return &AgentContext{
		ApprovedCategories: make(map[string]struct{}),
		RejectedCategories: make(map[string]struct{}),
		UserEdits:          make(map[string]string),
	}
}

// RecordApproval adds the category to the approved set.
func (c *AgentContext) RecordApproval(category string) {
	c.ApprovedCategories[category] = struct{}{}
}

// RecordRejection adds the category to the rejected set and appends the
// pattern to the rejection history.
func (c *AgentContext) RecordRejection(p RejectionPattern) {
	c.RejectedCategories[p.Category] = struct{}{}
	c.RejectionPatterns = append(c.RejectionPatterns, p)
}

// RecordEdit stores the reviewer's own version for a suggestion.
func (c *AgentContext) RecordEdit(suggestionID, userVersion string) {
	c.UserEdits[suggestionID] = userVersion
}

// RejectionCount returns how many recorded rejections fall in the category.
func (c *AgentContext) RejectionCount(category string) int {
	n := 0
	for _, p := range c.RejectionPatterns {
		if p.Category == category {
			n++
		}
	}
	return n
}

// Approved returns the approved categories in sorted order.
func (c *AgentContext) Approved() []string {
	return sortedKeys(c.ApprovedCategories)
}

// Rejected returns the rejected categories in sorted order.
func (c *AgentContext) Rejected() []string {
	return sortedKeys(c.RejectedCategories)
}

// RebuildContext reconstructs an AgentContext from a session's suggestion
// history. Rejection patterns are ordered by review time so running counts
// match the order decisions were made in.
func RebuildContext(sess *Session) *AgentContext {
	c := NewAgentContext()

	for _, s := range sess.Suggestions {
		switch s.Status {
		case StatusApproved:
			c.RecordApproval(s.Category)
		case StatusRejected:
			rejectedAt := sess.LastUpdatedAt
			if s.ReviewedAt != nil {
				rejectedAt = *s.ReviewedAt
			}
			c.RejectedCategories[s.Category] = struct{}{}
			c.RejectionPatterns = append(c.RejectionPatterns, RejectionPattern{
				SuggestionID:  s.ID,
				Category:      s.Category,
				OriginalIssue: s.Issue,
				RejectedAt:    rejectedAt,
			})
		case StatusEdited:
			c.RecordEdit(s.ID, s.UserVersion)
		}
	}

	sort.SliceStable(c.RejectionPatterns, func(i, j int) bool {
		return c.RejectionPatterns[i].RejectedAt.Before(c.RejectionPatterns[j].RejectedAt)
	})

	return c
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
