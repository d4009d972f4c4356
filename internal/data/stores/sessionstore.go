package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/redline/internal/core/suggestion"
	"github.com/colonyops/redline/internal/data/db"
)

// SessionStore implements suggestion.Store using SQLite.
type SessionStore struct {
	db *db.DB
}

var _ suggestion.Store = (*SessionStore)(nil)

// NewSessionStore creates a new SQLite-backed session store.
func NewSessionStore(db *db.DB) *SessionStore {
	return &SessionStore{db: db}
}

// CreateSession persists a new session with all of its suggestions in one
// transaction.
func (s *SessionStore) CreateSession(ctx context.Context, sess *suggestion.Session) error {
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		err := q.CreateReviewSession(ctx, db.CreateReviewSessionParams{
			ID:           sess.ID,
			DocumentPath: sess.DocumentPath,
			ContentHash:  sess.ContentHash,
			CreatedAt:    sess.CreatedAt.UnixNano(),
			UpdatedAt:    sess.LastUpdatedAt.UnixNano(),
		})
		if err != nil {
			return fmt.Errorf("failed to create review session: %w", err)
		}

		for i, sug := range sess.Suggestions {
			if err := q.UpsertSuggestion(ctx, suggestionToParams(sess.ID, int64(i), sug)); err != nil {
				return fmt.Errorf("failed to save suggestion %s: %w", sug.ID, err)
			}
		}
		return nil
	})
}

// LoadSession returns a session by id with suggestions in insertion order.
// Returns suggestion.ErrSessionNotFound if not found.
func (s *SessionStore) LoadSession(ctx context.Context, sessionID string) (*suggestion.Session, error) {
	row, err := s.db.Queries().GetReviewSession(ctx, sessionID)
	if IsNotFoundError(err) {
		return nil, suggestion.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review session: %w", err)
	}

	return s.hydrate(ctx, row)
}

// LoadLatestForDocument returns the most recent session for the document.
// Returns suggestion.ErrSessionNotFound if not found.
func (s *SessionStore) LoadLatestForDocument(ctx context.Context, documentPath string) (*suggestion.Session, error) {
	row, err := s.db.Queries().GetLatestReviewSessionByDocPath(ctx, documentPath)
	if IsNotFoundError(err) {
		return nil, suggestion.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review session by document: %w", err)
	}

	return s.hydrate(ctx, row)
}

// ListSessions returns all sessions, newest first, without suggestions.
func (s *SessionStore) ListSessions(ctx context.Context) ([]suggestion.Session, error) {
	rows, err := s.db.Queries().ListReviewSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list review sessions: %w", err)
	}

	sessions := make([]suggestion.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, rowToSession(row))
	}
	return sessions, nil
}

// SaveSession upserts every suggestion and bumps the session's updated_at.
func (s *SessionStore) SaveSession(ctx context.Context, sess *suggestion.Session) error {
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		for i, sug := range sess.Suggestions {
			if err := q.UpsertSuggestion(ctx, suggestionToParams(sess.ID, int64(i), sug)); err != nil {
				return fmt.Errorf("failed to save suggestion %s: %w", sug.ID, err)
			}
		}

		err := q.TouchReviewSession(ctx, db.TouchReviewSessionParams{
			UpdatedAt: sess.LastUpdatedAt.UnixNano(),
			ID:        sess.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to touch review session: %w", err)
		}
		return nil
	})
}

// UpdateSuggestion persists a single suggestion's review state.
// Returns suggestion.ErrNotFound if no row matched.
func (s *SessionStore) UpdateSuggestion(ctx context.Context, sessionID string, sug suggestion.Suggestion) error {
	affected, err := s.db.Queries().UpdateSuggestionReview(ctx, db.UpdateSuggestionReviewParams{
		Status:      string(sug.Status),
		UserVersion: toNullString(sug.UserVersion),
		ReviewedAt:  timeToNullInt64(sug.ReviewedAt),
		SessionID:   sessionID,
		ID:          sug.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to update suggestion: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", suggestion.ErrNotFound, sug.ID)
	}
	return nil
}

// CleanupStaleSessions removes sessions for a document whose content hash
// no longer matches the current document content.
func (s *SessionStore) CleanupStaleSessions(ctx context.Context, documentPath string, currentHash string) error {
	err := s.db.Queries().DeleteStaleReviewSessions(ctx, db.DeleteStaleReviewSessionsParams{
		DocumentPath: documentPath,
		ContentHash:  currentHash,
	})
	if err != nil {
		return fmt.Errorf("failed to cleanup stale sessions: %w", err)
	}
	return nil
}

// DeleteSession removes a review session; suggestion rows cascade.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.db.Queries().DeleteReviewSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete review session: %w", err)
	}
	return nil
}

// hydrate attaches the suggestion list to a session row.
func (s *SessionStore) hydrate(ctx context.Context, row db.ReviewSession) (*suggestion.Session, error) {
	sugRows, err := s.db.Queries().ListSuggestions(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	sess := rowToSession(row)
	sess.Suggestions = make([]suggestion.Suggestion, 0, len(sugRows))
	for _, sr := range sugRows {
		sess.Suggestions = append(sess.Suggestions, rowToSuggestion(sr))
	}
	return &sess, nil
}

func rowToSession(row db.ReviewSession) suggestion.Session {
	return suggestion.Session{
		ID:            row.ID,
		DocumentPath:  row.DocumentPath,
		ContentHash:   row.ContentHash,
		CreatedAt:     time.Unix(0, row.CreatedAt),
		LastUpdatedAt: time.Unix(0, row.UpdatedAt),
	}
}

func rowToSuggestion(row db.Suggestion) suggestion.Suggestion {
	var reviewedAt *time.Time
	if row.ReviewedAt.Valid {
		t := time.Unix(0, row.ReviewedAt.Int64)
		reviewedAt = &t
	}

	return suggestion.Suggestion{
		ID:           row.ID,
		Category:     row.Category,
		Section:      row.Section.String,
		LineStart:    int(row.LineStart.Int64),
		LineEnd:      int(row.LineEnd.Int64),
		TextSnippet:  row.TextSnippet.String,
		Issue:        row.Issue,
		SuggestedFix: row.SuggestedFix,
		Status:       suggestion.Status(row.Status),
		UserVersion:  row.UserVersion.String,
		ReviewedAt:   reviewedAt,
	}
}

func suggestionToParams(sessionID string, position int64, sug suggestion.Suggestion) db.UpsertSuggestionParams {
	return db.UpsertSuggestionParams{
		SessionID:    sessionID,
		ID:           sug.ID,
		Position:     position,
		Category:     sug.Category,
		Section:      toNullString(sug.Section),
		LineStart:    toNullInt64(sug.LineStart),
		LineEnd:      toNullInt64(sug.LineEnd),
		TextSnippet:  toNullString(sug.TextSnippet),
		Issue:        sug.Issue,
		SuggestedFix: sug.SuggestedFix,
		Status:       string(sug.Status),
		UserVersion:  toNullString(sug.UserVersion),
		ReviewedAt:   timeToNullInt64(sug.ReviewedAt),
	}
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullInt64(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

func timeToNullInt64(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}
