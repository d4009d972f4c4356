package redline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/redline/internal/core/feedback"
	"github.com/colonyops/redline/internal/core/logging"
	"github.com/colonyops/redline/internal/core/patch"
	"github.com/colonyops/redline/internal/core/suggestion"
)

// ReviewService owns the suggestion review workflow: session creation and
// loading, routing reviewer feedback, batch operations, and folding
// accepted fixes back into document content.
type ReviewService struct {
	store     suggestion.Store
	processor *feedback.Processor
	threshold int
	log       zerolog.Logger

	// loadMu guards the in-flight session load. Switching the reviewed
	// document cancels the previous load so a slow stale response cannot
	// overwrite the newly selected document's state.
	loadMu     sync.Mutex
	loadCancel context.CancelFunc
}

// NewReviewService creates a review service persisting through store.
func NewReviewService(store suggestion.Store, rejectionThreshold int) *ReviewService {
	if rejectionThreshold < 1 {
		rejectionThreshold = feedback.DefaultRejectionThreshold
	}
	return &ReviewService{
		store:     store,
		processor: feedback.NewProcessor(store, rejectionThreshold),
		threshold: rejectionThreshold,
		log:       logging.Component("review"),
	}
}

// HashContent returns the SHA-256 hex digest of document content, used to
// detect stale sessions after the document changes.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// CreateSession stores a new review session for the document, replacing
// any session whose content hash no longer matches. Suggestions arrive
// from the external generator; missing ids are filled in and every
// suggestion starts pending.
func (s *ReviewService) CreateSession(ctx context.Context, documentPath, content string, sugs []suggestion.Suggestion) (*suggestion.Session, error) {
	hash := HashContent(content)

	if err := s.store.CleanupStaleSessions(ctx, documentPath, hash); err != nil {
		return nil, fmt.Errorf("cleanup stale sessions: %w", err)
	}

	now := time.Now()
	sess := &suggestion.Session{
		ID:            uuid.NewString(),
		DocumentPath:  documentPath,
		ContentHash:   hash,
		Suggestions:   make([]suggestion.Suggestion, 0, len(sugs)),
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	for _, sug := range sugs {
		if sug.ID == "" {
			sug.ID = uuid.NewString()
		}
		sug.Status = suggestion.StatusPending
		sug.UserVersion = ""
		sug.ReviewedAt = nil
		sess.Suggestions = append(sess.Suggestions, sug)
	}

	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().Ctx(ctx).
		Str("session_id", sess.ID).
		Int("suggestions", len(sess.Suggestions)).
		Msg("review session created")

	return sess, nil
}

// LoadForDocument loads the most recent session for the document and
// rebuilds its AgentContext from the suggestion history.
//
// Only one load is in flight at a time: starting a new one cancels the
// previous request first, so navigating between documents cannot leave a
// slow response racing a fresh one.
func (s *ReviewService) LoadForDocument(ctx context.Context, documentPath string) (*suggestion.Session, *suggestion.AgentContext, error) {
	loadCtx := s.beginLoad(ctx)
	defer s.endLoad()

	sess, err := s.store.LoadLatestForDocument(loadCtx, documentPath)
	if err != nil {
		return nil, nil, err
	}
	return sess, suggestion.RebuildContext(sess), nil
}

// LoadSession loads a session by id and rebuilds its AgentContext.
func (s *ReviewService) LoadSession(ctx context.Context, sessionID string) (*suggestion.Session, *suggestion.AgentContext, error) {
	sess, err := s.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return sess, suggestion.RebuildContext(sess), nil
}

// Sessions lists all stored sessions, newest first.
func (s *ReviewService) Sessions(ctx context.Context) ([]suggestion.Session, error) {
	return s.store.ListSessions(ctx)
}

// DeleteSession removes a session and its suggestions.
func (s *ReviewService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, sessionID)
}

// Feedback applies one reviewer decision through the feedback processor.
func (s *ReviewService) Feedback(ctx context.Context, sess *suggestion.Session, agent *suggestion.AgentContext, req feedback.Request) feedback.Result {
	return s.processor.Process(ctx, sess, agent, req)
}

// BatchResult is the outcome of a batch feedback operation.
type BatchResult struct {
	Updated              []suggestion.Suggestion `json:"updated"`
	AlternativeTriggered bool                    `json:"alternative_triggered"`
	// Errors maps suggestion id to the failure that hit it: unknown id or
	// a persistence error. Successful updates are unaffected.
	Errors map[string]string `json:"errors,omitempty"`
}

// BatchFeedback applies the same action to several suggestions, used for
// approve-all / reject-all.
//
// The in-memory update is applied optimistically and atomically up front,
// then each suggestion's persistence call is issued independently and
// concurrently, so one failure neither rolls back the store nor blocks
// the other writes. Failed ids are reported in the result; reconciliation
// happens on the next session load.
func (s *ReviewService) BatchFeedback(ctx context.Context, sess *suggestion.Session, agent *suggestion.AgentContext, ids []string, action feedback.Action) BatchResult {
	result := BatchResult{Errors: make(map[string]string)}

	if action == feedback.ActionEdit {
		for _, id := range ids {
			result.Errors[id] = "edit is not a batch action"
		}
		return result
	}

	now := time.Now()
	updated, err := sess.SetStatusMany(ids, action.Status(), now)
	if err != nil {
		// SetStatusMany keeps going past unknown ids; mark the ones that
		// did not come back as updated.
		applied := make(map[string]bool, len(updated))
		for _, u := range updated {
			applied[u.ID] = true
		}
		for _, id := range ids {
			if !applied[id] {
				result.Errors[id] = suggestion.ErrNotFound.Error()
			}
		}
	}
	result.Updated = updated

	for _, u := range updated {
		switch action {
		case feedback.ActionApprove:
			agent.RecordApproval(u.Category)
		case feedback.ActionReject:
			agent.RecordRejection(suggestion.RejectionPattern{
				SuggestionID:  u.ID,
				Category:      u.Category,
				OriginalIssue: u.Issue,
				RejectedAt:    now,
			})
			if agent.RejectionCount(u.Category) >= s.threshold {
				result.AlternativeTriggered = true
			}
		}
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, u := range updated {
		wg.Add(1)
		go func(u suggestion.Suggestion) {
			defer wg.Done()
			if err := s.store.UpdateSuggestion(ctx, sess.ID, u); err != nil {
				mu.Lock()
				result.Errors[u.ID] = err.Error()
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()

	if err := s.store.SaveSession(ctx, sess); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("saving session after batch feedback failed")
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result
}

// ApplySession folds every approved and edited suggestion's fix into the
// document content and returns the result. Edited suggestions use the
// reviewer's version in place of the proposed fix.
//
// Line-anchored suggestions are applied bottom-up so earlier splices do
// not shift the line numbers of later ones; the remaining suggestions are
// applied in display order afterwards.
func (s *ReviewService) ApplySession(sess *suggestion.Session, content string) string {
	var lineAnchored, rest []suggestion.Suggestion
	for _, sug := range sess.Suggestions {
		if sug.Status != suggestion.StatusApproved && sug.Status != suggestion.StatusEdited {
			continue
		}
		if sug.Status == suggestion.StatusEdited {
			sug.SuggestedFix = sug.UserVersion
		}
		if sug.LineStart >= 1 {
			lineAnchored = append(lineAnchored, sug)
		} else {
			rest = append(rest, sug)
		}
	}

	sort.SliceStable(lineAnchored, func(i, j int) bool {
		return lineAnchored[i].LineStart > lineAnchored[j].LineStart
	})

	for _, sug := range lineAnchored {
		content = patch.ApplyFix(content, sug)
	}
	for _, sug := range rest {
		content = patch.ApplyFix(content, sug)
	}
	return content
}

// InvalidateIfChanged hashes the current document content and removes any
// sessions recorded against a different hash.
func (s *ReviewService) InvalidateIfChanged(ctx context.Context, documentPath, content string) error {
	return s.store.CleanupStaleSessions(ctx, documentPath, HashContent(content))
}

// beginLoad cancels any in-flight load and registers a new one derived
// from ctx.
func (s *ReviewService) beginLoad(ctx context.Context) context.Context {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.loadCancel != nil {
		s.loadCancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.loadCancel = cancel
	return loadCtx
}

func (s *ReviewService) endLoad() {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.loadCancel != nil {
		s.loadCancel()
		s.loadCancel = nil
	}
}
