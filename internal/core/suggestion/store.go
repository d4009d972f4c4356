package suggestion

import "context"

// Store defines persistence operations for review sessions and their
// suggestions.
//
// Implementations are treated as a black box by the core: every call must
// honor the supplied context's cancellation and deadline, and no call may
// block indefinitely.
type Store interface {
	// CreateSession persists a new session with all of its suggestions.
	CreateSession(ctx context.Context, sess *Session) error

	// LoadSession returns a session by id, suggestions in insertion order.
	// Returns ErrSessionNotFound if not found.
	LoadSession(ctx context.Context, sessionID string) (*Session, error)

	// LoadLatestForDocument returns the most recent session for the given
	// document path. Returns ErrSessionNotFound if not found.
	LoadLatestForDocument(ctx context.Context, documentPath string) (*Session, error)

	// ListSessions returns all sessions, newest first, without their
	// suggestion lists.
	ListSessions(ctx context.Context) ([]Session, error)

	// SaveSession upserts the session row and all of its suggestions.
	SaveSession(ctx context.Context, sess *Session) error

	// UpdateSuggestion persists a single suggestion's review state.
	// Returns ErrNotFound if the suggestion does not exist.
	UpdateSuggestion(ctx context.Context, sessionID string, s Suggestion) error

	// CleanupStaleSessions removes sessions for a document whose content
	// hash no longer matches the current document content.
	CleanupStaleSessions(ctx context.Context, documentPath string, currentHash string) error

	// DeleteSession removes a session and all associated suggestions.
	DeleteSession(ctx context.Context, sessionID string) error
}
