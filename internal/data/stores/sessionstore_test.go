package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/redline/internal/core/suggestion"
	"github.com/colonyops/redline/internal/data/db"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()

	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return NewSessionStore(database)
}

func testSession(id, docPath, hash string, createdAt time.Time) *suggestion.Session {
	return &suggestion.Session{
		ID:            id,
		DocumentPath:  docPath,
		ContentHash:   hash,
		CreatedAt:     createdAt,
		LastUpdatedAt: createdAt,
		Suggestions: []suggestion.Suggestion{
			{ID: "s-1", Category: "clarity", LineStart: 3, LineEnd: 5, Issue: "vague", SuggestedFix: "be specific", Status: suggestion.StatusPending},
			{ID: "s-2", Category: "security", Section: "## Auth", Issue: "plaintext", SuggestedFix: "hash it", Status: suggestion.StatusPending},
		},
	}
}

func TestSessionStore_CreateAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := testSession("sess-1", "/docs/plan.md", "hash-a", created)
	require.NoError(t, store.CreateSession(ctx, sess))

	t.Run("round-trips the session and suggestions in order", func(t *testing.T) {
		got, err := store.LoadSession(ctx, "sess-1")
		require.NoError(t, err)

		assert.Equal(t, "/docs/plan.md", got.DocumentPath)
		assert.Equal(t, "hash-a", got.ContentHash)
		assert.True(t, got.CreatedAt.Equal(created))

		require.Len(t, got.Suggestions, 2)
		assert.Equal(t, "s-1", got.Suggestions[0].ID)
		assert.Equal(t, 3, got.Suggestions[0].LineStart)
		assert.Equal(t, 5, got.Suggestions[0].LineEnd)
		assert.Equal(t, "s-2", got.Suggestions[1].ID)
		assert.Equal(t, "## Auth", got.Suggestions[1].Section)
		assert.Nil(t, got.Suggestions[1].ReviewedAt)
	})

	t.Run("unknown session id", func(t *testing.T) {
		_, err := store.LoadSession(ctx, "ghost")
		assert.ErrorIs(t, err, suggestion.ErrSessionNotFound)
	})
}

func TestSessionStore_LoadLatestForDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateSession(ctx, testSession("old", "/docs/plan.md", "hash-a", base)))
	require.NoError(t, store.CreateSession(ctx, testSession("new", "/docs/plan.md", "hash-b", base.Add(time.Hour))))
	require.NoError(t, store.CreateSession(ctx, testSession("other", "/docs/notes.md", "hash-c", base.Add(2*time.Hour))))

	got, err := store.LoadLatestForDocument(ctx, "/docs/plan.md")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)

	_, err = store.LoadLatestForDocument(ctx, "/docs/missing.md")
	assert.ErrorIs(t, err, suggestion.ErrSessionNotFound)
}

func TestSessionStore_ListSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateSession(ctx, testSession("a", "/docs/a.md", "ha", base)))
	require.NoError(t, store.CreateSession(ctx, testSession("b", "/docs/b.md", "hb", base.Add(time.Hour))))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Newest first.
	assert.Equal(t, "b", sessions[0].ID)
	assert.Equal(t, "a", sessions[1].ID)
}

func TestSessionStore_UpdateSuggestion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := testSession("sess-1", "/docs/plan.md", "hash-a", created)
	require.NoError(t, store.CreateSession(ctx, sess))

	t.Run("persists review state", func(t *testing.T) {
		reviewed := created.Add(time.Minute)
		err := store.UpdateSuggestion(ctx, "sess-1", suggestion.Suggestion{
			ID:          "s-1",
			Status:      suggestion.StatusEdited,
			UserVersion: "reviewer wording",
			ReviewedAt:  &reviewed,
		})
		require.NoError(t, err)

		got, err := store.LoadSession(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, suggestion.StatusEdited, got.Suggestions[0].Status)
		assert.Equal(t, "reviewer wording", got.Suggestions[0].UserVersion)
		require.NotNil(t, got.Suggestions[0].ReviewedAt)
		assert.True(t, got.Suggestions[0].ReviewedAt.Equal(reviewed))
	})

	t.Run("unknown suggestion id", func(t *testing.T) {
		err := store.UpdateSuggestion(ctx, "sess-1", suggestion.Suggestion{
			ID:     "ghost",
			Status: suggestion.StatusApproved,
		})
		assert.ErrorIs(t, err, suggestion.ErrNotFound)
	})
}

func TestSessionStore_SaveSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := testSession("sess-1", "/docs/plan.md", "hash-a", created)
	require.NoError(t, store.CreateSession(ctx, sess))

	reviewed := created.Add(time.Minute)
	sess.Suggestions[0].Status = suggestion.StatusApproved
	sess.Suggestions[0].ReviewedAt = &reviewed
	sess.LastUpdatedAt = reviewed
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.LoadSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, suggestion.StatusApproved, got.Suggestions[0].Status)
	assert.True(t, got.LastUpdatedAt.Equal(reviewed))
}

func TestSessionStore_CleanupStaleSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateSession(ctx, testSession("stale", "/docs/plan.md", "old-hash", base)))
	require.NoError(t, store.CreateSession(ctx, testSession("current", "/docs/plan.md", "new-hash", base.Add(time.Hour))))
	require.NoError(t, store.CreateSession(ctx, testSession("other", "/docs/notes.md", "old-hash", base)))

	require.NoError(t, store.CleanupStaleSessions(ctx, "/docs/plan.md", "new-hash"))

	_, err := store.LoadSession(ctx, "stale")
	assert.ErrorIs(t, err, suggestion.ErrSessionNotFound)

	// Matching hash and other documents survive.
	_, err = store.LoadSession(ctx, "current")
	assert.NoError(t, err)
	_, err = store.LoadSession(ctx, "other")
	assert.NoError(t, err)
}

func TestSessionStore_DeleteSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateSession(ctx, testSession("sess-1", "/docs/plan.md", "hash-a", created)))
	require.NoError(t, store.DeleteSession(ctx, "sess-1"))

	_, err := store.LoadSession(ctx, "sess-1")
	assert.ErrorIs(t, err, suggestion.ErrSessionNotFound)

	// Suggestion rows cascade; recreating the same session id works.
	require.NoError(t, store.CreateSession(ctx, testSession("sess-1", "/docs/plan.md", "hash-a", created)))
	got, err := store.LoadSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, got.Suggestions, 2)
}
