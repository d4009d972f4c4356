package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/redline/internal/core/suggestion"
)

// memStore is an in-memory suggestion.Store recording calls for assertions.
type memStore struct {
	sessions map[string]*suggestion.Session

	updateErr error
	saveErr   error

	updateCalls int
	saveCalls   int
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*suggestion.Session)}
}

func (m *memStore) CreateSession(_ context.Context, sess *suggestion.Session) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memStore) LoadSession(_ context.Context, id string) (*suggestion.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, suggestion.ErrSessionNotFound
	}
	return sess, nil
}

func (m *memStore) LoadLatestForDocument(_ context.Context, path string) (*suggestion.Session, error) {
	for _, sess := range m.sessions {
		if sess.DocumentPath == path {
			return sess, nil
		}
	}
	return nil, suggestion.ErrSessionNotFound
}

func (m *memStore) ListSessions(_ context.Context) ([]suggestion.Session, error) {
	out := make([]suggestion.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, *sess)
	}
	return out, nil
}

func (m *memStore) SaveSession(_ context.Context, sess *suggestion.Session) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memStore) UpdateSuggestion(_ context.Context, _ string, _ suggestion.Suggestion) error {
	m.updateCalls++
	return m.updateErr
}

func (m *memStore) CleanupStaleSessions(_ context.Context, _ string, _ string) error {
	return nil
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

var _ suggestion.Store = (*memStore)(nil)

func testSession() *suggestion.Session {
	return &suggestion.Session{
		ID:           "sess-1",
		DocumentPath: "/docs/plan.md",
		Suggestions: []suggestion.Suggestion{
			{ID: "s-1", Category: "clarity", Issue: "vague intro", SuggestedFix: "be specific", Status: suggestion.StatusPending},
			{ID: "s-2", Category: "clarity", Issue: "run-on", SuggestedFix: "split it", Status: suggestion.StatusPending},
			{ID: "s-3", Category: "clarity", Issue: "buried lede", SuggestedFix: "lead with it", Status: suggestion.StatusPending},
			{ID: "s-4", Category: "security", Issue: "plaintext", SuggestedFix: "hash it", Status: suggestion.StatusPending},
		},
	}
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"approve", "reject", "edit", "dismiss", "resolve"} {
		a, err := ParseAction(valid)
		require.NoError(t, err)
		assert.True(t, a.Status().Valid())
		assert.True(t, a.Status().Terminal())
	}

	_, err := ParseAction("yeet")
	assert.ErrorIs(t, err, suggestion.ErrInvalidArgument)
}

func TestProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("approve records the category and persists", func(t *testing.T) {
		store := newMemStore()
		p := NewProcessor(store, 0)
		sess := testSession()
		agent := suggestion.NewAgentContext()

		result := p.Process(ctx, sess, agent, Request{
			SessionID:    sess.ID,
			SuggestionID: "s-1",
			Action:       ActionApprove,
		})

		require.True(t, result.Success)
		assert.Equal(t, suggestion.StatusApproved, result.Suggestion.Status)
		assert.False(t, result.AlternativeTriggered)
		assert.Equal(t, []string{"clarity"}, agent.Approved())
		assert.Equal(t, 1, store.updateCalls)
		assert.Equal(t, 1, store.saveCalls)
	})

	t.Run("edit stores the user version", func(t *testing.T) {
		store := newMemStore()
		p := NewProcessor(store, 0)
		sess := testSession()
		agent := suggestion.NewAgentContext()

		result := p.Process(ctx, sess, agent, Request{
			SessionID:    sess.ID,
			SuggestionID: "s-1",
			Action:       ActionEdit,
			UserVersion:  "reviewer wording",
		})

		require.True(t, result.Success)
		assert.Equal(t, suggestion.StatusEdited, result.Suggestion.Status)
		assert.Equal(t, "reviewer wording", result.Suggestion.UserVersion)
		assert.Equal(t, "reviewer wording", agent.UserEdits["s-1"])
	})

	t.Run("edit without a user version fails before touching the session", func(t *testing.T) {
		store := newMemStore()
		p := NewProcessor(store, 0)
		sess := testSession()

		result := p.Process(ctx, sess, suggestion.NewAgentContext(), Request{
			SessionID:    sess.ID,
			SuggestionID: "s-1",
			Action:       ActionEdit,
		})

		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
		assert.Equal(t, suggestion.StatusPending, sess.Suggestions[0].Status)
		assert.Zero(t, store.updateCalls)
	})

	t.Run("repeated rejections in one category trigger the alternative signal", func(t *testing.T) {
		store := newMemStore()
		p := NewProcessor(store, 2)
		sess := testSession()
		agent := suggestion.NewAgentContext()

		first := p.Process(ctx, sess, agent, Request{SessionID: sess.ID, SuggestionID: "s-1", Action: ActionReject})
		require.True(t, first.Success)
		assert.False(t, first.AlternativeTriggered)

		second := p.Process(ctx, sess, agent, Request{SessionID: sess.ID, SuggestionID: "s-2", Action: ActionReject})
		require.True(t, second.Success)
		assert.True(t, second.AlternativeTriggered)

		third := p.Process(ctx, sess, agent, Request{SessionID: sess.ID, SuggestionID: "s-3", Action: ActionReject})
		require.True(t, third.Success)
		assert.True(t, third.AlternativeTriggered)

		// A different category starts its own count.
		other := p.Process(ctx, sess, agent, Request{SessionID: sess.ID, SuggestionID: "s-4", Action: ActionReject})
		require.True(t, other.Success)
		assert.False(t, other.AlternativeTriggered)

		assert.Equal(t, 3, agent.RejectionCount("clarity"))
		assert.Equal(t, 1, agent.RejectionCount("security"))
	})

	t.Run("unknown suggestion id", func(t *testing.T) {
		store := newMemStore()
		p := NewProcessor(store, 0)

		result := p.Process(ctx, testSession(), suggestion.NewAgentContext(), Request{
			SessionID:    "sess-1",
			SuggestionID: "ghost",
			Action:       ActionApprove,
		})

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "ghost")
		assert.Zero(t, store.updateCalls)
	})

	t.Run("unknown action", func(t *testing.T) {
		result := NewProcessor(newMemStore(), 0).Process(ctx, testSession(), suggestion.NewAgentContext(), Request{
			SuggestionID: "s-1",
			Action:       Action("yeet"),
		})
		assert.False(t, result.Success)
	})

	t.Run("persistence failure keeps the in-memory update", func(t *testing.T) {
		store := newMemStore()
		store.updateErr = errors.New("disk full")
		p := NewProcessor(store, 0)
		sess := testSession()

		result := p.Process(ctx, sess, suggestion.NewAgentContext(), Request{
			SessionID:    sess.ID,
			SuggestionID: "s-1",
			Action:       ActionApprove,
		})

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "disk full")
		// The optimistic update stays; reconciliation happens on reload.
		assert.Equal(t, suggestion.StatusApproved, sess.Suggestions[0].Status)
		require.NotNil(t, sess.Suggestions[0].ReviewedAt)
		assert.WithinDuration(t, time.Now(), *sess.Suggestions[0].ReviewedAt, time.Minute)
	})
}
