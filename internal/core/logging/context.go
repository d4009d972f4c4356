package logging

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	documentKey  contextKey = "document"
)

// WithSessionID adds a review session ID to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithDocument adds a document path to the context.
func WithDocument(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, documentKey, path)
}

// GetSessionID retrieves the review session ID from the context.
// Returns empty string if not present.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetDocument retrieves the document path from the context.
// Returns empty string if not present.
func GetDocument(ctx context.Context) string {
	if p, ok := ctx.Value(documentKey).(string); ok {
		return p
	}
	return ""
}
