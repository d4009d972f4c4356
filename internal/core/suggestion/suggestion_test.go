package suggestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	return &Session{
		ID:           "sess-1",
		DocumentPath: "/docs/plan.md",
		ContentHash:  "abc123",
		Suggestions: []Suggestion{
			{ID: "s-1", Category: "clarity", Issue: "vague", SuggestedFix: "be specific", Status: StatusPending},
			{ID: "s-2", Category: "security", Issue: "plaintext", SuggestedFix: "hash it", Status: StatusPending},
			{ID: "s-3", Category: "clarity", Issue: "run-on", SuggestedFix: "split it", Status: StatusPending},
		},
	}
}

func TestStatus(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, s := range []Status{StatusPending, StatusApproved, StatusRejected, StatusEdited, StatusDismissed, StatusResolved} {
			assert.True(t, s.Valid(), string(s))
		}
		assert.False(t, Status("bogus").Valid())
	})

	t.Run("every status except pending is terminal", func(t *testing.T) {
		assert.False(t, StatusPending.Terminal())
		assert.True(t, StatusApproved.Terminal())
		assert.True(t, StatusRejected.Terminal())
		assert.False(t, Status("bogus").Terminal())
	})
}

func TestSession_SetStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("approve stamps reviewed at and bumps the session", func(t *testing.T) {
		sess := testSession()
		got, err := sess.SetStatus("s-1", StatusApproved, "", now)
		require.NoError(t, err)

		assert.Equal(t, StatusApproved, got.Status)
		require.NotNil(t, got.ReviewedAt)
		assert.Equal(t, now, *got.ReviewedAt)
		assert.Equal(t, now, sess.LastUpdatedAt)

		// Updated in place, order preserved.
		assert.Equal(t, "s-1", sess.Suggestions[0].ID)
		assert.Equal(t, StatusApproved, sess.Suggestions[0].Status)
	})

	t.Run("edited requires a user version", func(t *testing.T) {
		sess := testSession()
		_, err := sess.SetStatus("s-1", StatusEdited, "", now)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		got, err := sess.SetStatus("s-1", StatusEdited, "my version", now)
		require.NoError(t, err)
		assert.Equal(t, "my version", got.UserVersion)
	})

	t.Run("non-edited statuses clear the user version", func(t *testing.T) {
		sess := testSession()
		_, err := sess.SetStatus("s-1", StatusEdited, "my version", now)
		require.NoError(t, err)

		got, err := sess.SetStatus("s-1", StatusApproved, "", now.Add(time.Minute))
		require.NoError(t, err)
		assert.Empty(t, got.UserVersion)
	})

	t.Run("re-applying a terminal status overwrites the timestamp", func(t *testing.T) {
		sess := testSession()
		_, err := sess.SetStatus("s-1", StatusApproved, "", now)
		require.NoError(t, err)

		later := now.Add(time.Hour)
		got, err := sess.SetStatus("s-1", StatusApproved, "", later)
		require.NoError(t, err)
		assert.Equal(t, later, *got.ReviewedAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		sess := testSession()
		_, err := sess.SetStatus("nope", StatusApproved, "", now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		sess := testSession()
		_, err := sess.SetStatus("s-1", Status("bogus"), "", now)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestSession_SetStatusMany(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("updates every listed suggestion", func(t *testing.T) {
		sess := testSession()
		updated, err := sess.SetStatusMany([]string{"s-1", "s-3"}, StatusApproved, now)
		require.NoError(t, err)
		require.Len(t, updated, 2)

		assert.Equal(t, StatusApproved, sess.Suggestions[0].Status)
		assert.Equal(t, StatusPending, sess.Suggestions[1].Status)
		assert.Equal(t, StatusApproved, sess.Suggestions[2].Status)
	})

	t.Run("unknown ids do not roll back applied updates", func(t *testing.T) {
		sess := testSession()
		updated, err := sess.SetStatusMany([]string{"s-1", "ghost", "s-2"}, StatusRejected, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)

		require.Len(t, updated, 2)
		assert.Equal(t, StatusRejected, sess.Suggestions[0].Status)
		assert.Equal(t, StatusRejected, sess.Suggestions[1].Status)
	})
}

func TestSession_Find(t *testing.T) {
	sess := testSession()

	got, ok := sess.Find("s-2")
	require.True(t, ok)
	assert.Equal(t, "security", got.Category)

	_, ok = sess.Find("ghost")
	assert.False(t, ok)
}

func TestSession_CountByStatus(t *testing.T) {
	sess := testSession()
	now := time.Now()

	_, err := sess.SetStatus("s-1", StatusApproved, "", now)
	require.NoError(t, err)
	_, err = sess.SetStatus("s-2", StatusRejected, "", now)
	require.NoError(t, err)

	counts := sess.CountByStatus()
	assert.Equal(t, 1, counts[StatusApproved])
	assert.Equal(t, 1, counts[StatusRejected])
	assert.Equal(t, 1, counts[StatusPending])
}
