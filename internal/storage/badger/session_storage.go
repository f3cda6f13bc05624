package badger

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SessionStorage implements the SessionStorage interface for Badger
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SessionStorage) SaveSession(session *models.Session) error {
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}
	if session.UserID == "" {
		return fmt.Errorf("session user ID is required")
	}

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	if err := s.db.Store().Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStorage) GetSession(id string) (*models.Session, error) {
	var session models.Session
	if err := s.db.Store().Get(id, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (s *SessionStorage) SoftDeleteSession(id string) error {
	session, err := s.GetSession(id)
	if err != nil {
		return err
	}
	now := time.Now()
	session.Active = false
	session.DeletedAt = &now
	return s.SaveSession(session)
}

// ListActiveSessions excludes soft-deleted sessions. Their children
// remain queryable until the retention purge runs.
func (s *SessionStorage) ListActiveSessions(userID string) ([]*models.Session, error) {
	var sessions []models.Session
	if err := s.db.Store().Find(&sessions, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	result := make([]*models.Session, 0, len(sessions))
	for i := range sessions {
		if sessions[i].Active && sessions[i].DeletedAt == nil {
			result = append(result, &sessions[i])
		}
	}
	return result, nil
}

func (s *SessionStorage) AppendMessage(msg *models.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if err := s.db.Store().Insert(msg.ID, msg); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// GetMessages returns the session's messages in chronological order,
// keeping the most recent limit when one is given.
func (s *SessionStorage) GetMessages(sessionID string, limit int) ([]*models.Message, error) {
	var messages []models.Message
	if err := s.db.Store().Find(&messages, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	result := make([]*models.Message, len(messages))
	for i := range messages {
		result[i] = &messages[i]
	}
	return result, nil
}

// SimilarMessages searches message embeddings scoped to the owner and
// optionally one session. Messages without embeddings never match.
func (s *SessionStorage) SimilarMessages(userID, sessionID string, vector []float32, threshold float64, limit int) ([]*models.MessageResult, error) {
	query := badgerhold.Where("UserID").Eq(userID)
	if sessionID != "" {
		query = query.And("SessionID").Eq(sessionID)
	}

	var messages []models.Message
	if err := s.db.Store().Find(&messages, query); err != nil {
		return nil, fmt.Errorf("message similarity search failed: %w", err)
	}

	results := make([]*models.MessageResult, 0)
	for i := range messages {
		if len(messages[i].Embedding) == 0 {
			continue
		}
		sim := common.CosineSimilarity(vector, messages[i].Embedding)
		if sim >= threshold {
			score := sim
			results = append(results, &models.MessageResult{Message: &messages[i], Similarity: &score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].Similarity > *results[j].Similarity
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// TextSearchMessages is the case-insensitive substring fallback over
// message content. An empty query matches nothing.
func (s *SessionStorage) TextSearchMessages(userID, sessionID, query string, limit int) ([]*models.Message, error) {
	if query == "" {
		return []*models.Message{}, nil
	}

	regex, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	q := badgerhold.Where("UserID").Eq(userID).And("Content").RegExp(regex)
	if sessionID != "" {
		q = q.And("SessionID").Eq(sessionID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var messages []models.Message
	if err := s.db.Store().Find(&messages, q); err != nil {
		return nil, fmt.Errorf("message text search failed: %w", err)
	}

	result := make([]*models.Message, len(messages))
	for i := range messages {
		result[i] = &messages[i]
	}
	return result, nil
}

func (s *SessionStorage) SessionsDeletedBefore(cutoff time.Time, limit int) ([]*models.Session, error) {
	var sessions []models.Session
	if err := s.db.Store().Find(&sessions, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to find soft-deleted sessions: %w", err)
	}

	result := make([]*models.Session, 0)
	for i := range sessions {
		if sessions[i].DeletedAt != nil && sessions[i].DeletedAt.Before(cutoff) {
			result = append(result, &sessions[i])
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// PurgeSession physically removes a session and its messages. Contexts
// are purged separately by ContextStorage.
func (s *SessionStorage) PurgeSession(id string) error {
	if err := s.db.Store().DeleteMatching(&models.Message{}, badgerhold.Where("SessionID").Eq(id)); err != nil {
		return fmt.Errorf("failed to purge messages for session %s: %w", id, err)
	}
	if err := s.db.Store().Delete(id, &models.Session{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to purge session %s: %w", id, err)
	}
	return nil
}
