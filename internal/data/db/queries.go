package db

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the query layer, satisfied by
// both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries is the hand-written query layer over the review schema.
type Queries struct {
	db DBTX
}

// New creates a query layer bound to the given connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ReviewSession is a row of the review_sessions table.
type ReviewSession struct {
	ID           string
	DocumentPath string
	ContentHash  string
	CreatedAt    int64
	UpdatedAt    int64
}

// Suggestion is a row of the suggestions table.
type Suggestion struct {
	SessionID    string
	ID           string
	Position     int64
	Category     string
	Section      sql.NullString
	LineStart    sql.NullInt64
	LineEnd      sql.NullInt64
	TextSnippet  sql.NullString
	Issue        string
	SuggestedFix string
	Status       string
	UserVersion  sql.NullString
	ReviewedAt   sql.NullInt64
}

type CreateReviewSessionParams struct {
	ID           string
	DocumentPath string
	ContentHash  string
	CreatedAt    int64
	UpdatedAt    int64
}

func (q *Queries) CreateReviewSession(ctx context.Context, arg CreateReviewSessionParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO review_sessions (id, document_path, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		arg.ID, arg.DocumentPath, arg.ContentHash, arg.CreatedAt, arg.UpdatedAt,
	)
	return err
}

func (q *Queries) GetReviewSession(ctx context.Context, id string) (ReviewSession, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, document_path, content_hash, created_at, updated_at
		FROM review_sessions WHERE id = ?`, id,
	)
	return scanReviewSession(row)
}

func (q *Queries) GetLatestReviewSessionByDocPath(ctx context.Context, documentPath string) (ReviewSession, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, document_path, content_hash, created_at, updated_at
		FROM review_sessions WHERE document_path = ?
		ORDER BY created_at DESC LIMIT 1`, documentPath,
	)
	return scanReviewSession(row)
}

func (q *Queries) ListReviewSessions(ctx context.Context) ([]ReviewSession, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, document_path, content_hash, created_at, updated_at
		FROM review_sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []ReviewSession
	for rows.Next() {
		var s ReviewSession
		if err := rows.Scan(&s.ID, &s.DocumentPath, &s.ContentHash, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

type TouchReviewSessionParams struct {
	UpdatedAt int64
	ID        string
}

func (q *Queries) TouchReviewSession(ctx context.Context, arg TouchReviewSessionParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE review_sessions SET updated_at = ? WHERE id = ?`,
		arg.UpdatedAt, arg.ID,
	)
	return err
}

type DeleteStaleReviewSessionsParams struct {
	DocumentPath string
	ContentHash  string
}

// DeleteStaleReviewSessions removes sessions for the document whose hash
// differs from the current content hash.
func (q *Queries) DeleteStaleReviewSessions(ctx context.Context, arg DeleteStaleReviewSessionsParams) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM review_sessions WHERE document_path = ? AND content_hash != ?`,
		arg.DocumentPath, arg.ContentHash,
	)
	return err
}

func (q *Queries) DeleteReviewSession(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM review_sessions WHERE id = ?`, id)
	return err
}

type UpsertSuggestionParams struct {
	SessionID    string
	ID           string
	Position     int64
	Category     string
	Section      sql.NullString
	LineStart    sql.NullInt64
	LineEnd      sql.NullInt64
	TextSnippet  sql.NullString
	Issue        string
	SuggestedFix string
	Status       string
	UserVersion  sql.NullString
	ReviewedAt   sql.NullInt64
}

func (q *Queries) UpsertSuggestion(ctx context.Context, arg UpsertSuggestionParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO suggestions (
			session_id, id, position, category, section, line_start, line_end,
			text_snippet, issue, suggested_fix, status, user_version, reviewed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, id) DO UPDATE SET
			position = excluded.position,
			status = excluded.status,
			user_version = excluded.user_version,
			reviewed_at = excluded.reviewed_at`,
		arg.SessionID, arg.ID, arg.Position, arg.Category, arg.Section,
		arg.LineStart, arg.LineEnd, arg.TextSnippet, arg.Issue,
		arg.SuggestedFix, arg.Status, arg.UserVersion, arg.ReviewedAt,
	)
	return err
}

type UpdateSuggestionReviewParams struct {
	Status      string
	UserVersion sql.NullString
	ReviewedAt  sql.NullInt64
	SessionID   string
	ID          string
}

func (q *Queries) UpdateSuggestionReview(ctx context.Context, arg UpdateSuggestionReviewParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE suggestions SET status = ?, user_version = ?, reviewed_at = ?
		WHERE session_id = ? AND id = ?`,
		arg.Status, arg.UserVersion, arg.ReviewedAt, arg.SessionID, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type GetSuggestionParams struct {
	SessionID string
	ID        string
}

func (q *Queries) GetSuggestion(ctx context.Context, arg GetSuggestionParams) (Suggestion, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT session_id, id, position, category, section, line_start, line_end,
			text_snippet, issue, suggested_fix, status, user_version, reviewed_at
		FROM suggestions WHERE session_id = ? AND id = ?`,
		arg.SessionID, arg.ID,
	)
	var s Suggestion
	err := row.Scan(
		&s.SessionID, &s.ID, &s.Position, &s.Category, &s.Section,
		&s.LineStart, &s.LineEnd, &s.TextSnippet, &s.Issue,
		&s.SuggestedFix, &s.Status, &s.UserVersion, &s.ReviewedAt,
	)
	return s, err
}

func (q *Queries) ListSuggestions(ctx context.Context, sessionID string) ([]Suggestion, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT session_id, id, position, category, section, line_start, line_end,
			text_snippet, issue, suggested_fix, status, user_version, reviewed_at
		FROM suggestions WHERE session_id = ? ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var suggestions []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(
			&s.SessionID, &s.ID, &s.Position, &s.Category, &s.Section,
			&s.LineStart, &s.LineEnd, &s.TextSnippet, &s.Issue,
			&s.SuggestedFix, &s.Status, &s.UserVersion, &s.ReviewedAt,
		); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

func scanReviewSession(row *sql.Row) (ReviewSession, error) {
	var s ReviewSession
	err := row.Scan(&s.ID, &s.DocumentPath, &s.ContentHash, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
