// -----------------------------------------------------------------------
// Context Service - Versioned short-term conversation context
// Summaries are immutable rows; each upsert writes version N+1
// -----------------------------------------------------------------------

package contexts

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
)

// MessageWindow caps how many recent messages a context read returns
const MessageWindow = 50

var validate = validator.New()

// Service implements ContextService
type Service struct {
	storage          interfaces.StorageManager
	embeddingService interfaces.EmbeddingService
	logger           arbor.ILogger
}

// NewService creates the context service
func NewService(storage interfaces.StorageManager, embeddingService interfaces.EmbeddingService, logger arbor.ILogger) interfaces.ContextService {
	return &Service{
		storage:          storage,
		embeddingService: embeddingService,
		logger:           logger,
	}
}

// GetContext returns the current context version and the recent message
// window. Soft-deleted sessions stay readable until the retention job
// purges them.
func (s *Service) GetContext(ctx context.Context, userID, sessionID string) (*models.ContextBundle, error) {
	if _, err := s.ownedSession(userID, sessionID, true); err != nil {
		return nil, err
	}

	current, err := s.storage.Contexts().GetCurrentContext(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load context: %w", err)
	}

	messages, err := s.storage.Sessions().GetMessages(sessionID, MessageWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	if current != nil {
		if err := s.storage.Contexts().TouchContext(current.ID, time.Now()); err != nil {
			s.logger.Warn().Err(err).Str("context_id", current.ID).Msg("Failed to update context access time")
		}
	}

	return &models.ContextBundle{
		Context:  current,
		Messages: messages,
	}, nil
}

// UpsertContext writes the next context version for the session. The
// previous version is superseded, never edited.
func (s *Service) UpsertContext(ctx context.Context, req *interfaces.UpsertContextRequest) (*models.ShortTermContext, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid context request: %w", err)
	}

	if _, err := s.ownedSession(req.UserID, req.SessionID, false); err != nil {
		return nil, err
	}

	version := 1
	current, err := s.storage.Contexts().GetCurrentContext(req.UserID, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current context: %w", err)
	}
	if current != nil {
		version = current.Version + 1
	}

	now := time.Now()
	stc := &models.ShortTermContext{
		ID:             common.NewContextID(),
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		Version:        version,
		Summary:        req.Summary,
		KeyTopics:      req.KeyTopics,
		MessageCount:   req.MessageCount,
		ContextWeight:  req.ContextWeight,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	if err := s.storage.Contexts().SaveContext(stc); err != nil {
		return nil, fmt.Errorf("failed to save context: %w", err)
	}

	s.logger.Debug().
		Str("session_id", req.SessionID).
		Int("version", version).
		Msg("Context version written")

	return stc, nil
}

// AppendMessage records a conversation turn. The embedding is best
// effort: a provider failure stores the message without a vector so it
// still shows up in the context window and lexical search.
func (s *Service) AppendMessage(ctx context.Context, userID, sessionID, role, content string) (*models.Message, error) {
	if userID == "" || sessionID == "" {
		return nil, fmt.Errorf("user id and session id are required")
	}
	if role != "user" && role != "assistant" {
		return nil, fmt.Errorf("invalid message role: %s", role)
	}
	if content == "" {
		return nil, fmt.Errorf("message content is empty")
	}

	if err := s.ensureSession(userID, sessionID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        common.NewMessageID(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if s.embeddingService.IsAvailable(ctx) {
		embedding, err := s.embeddingService.GenerateEmbedding(ctx, content)
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Message embedding failed, storing without vector")
		} else {
			msg.Embedding = embedding
		}
	}

	if err := s.storage.Sessions().AppendMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return msg, nil
}

// ownedSession loads the session and enforces ownership. allowDeleted
// controls whether a soft-deleted session is acceptable.
func (s *Service) ownedSession(userID, sessionID string, allowDeleted bool) (*models.Session, error) {
	session, err := s.storage.Sessions().GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	if !allowDeleted && session.IsDeleted() {
		return nil, fmt.Errorf("session is deleted: %s", sessionID)
	}
	return session, nil
}

// ensureSession creates the session on first use
func (s *Service) ensureSession(userID, sessionID string) error {
	session, err := s.storage.Sessions().GetSession(sessionID)
	if err == nil {
		if session.UserID != userID {
			return fmt.Errorf("session not found: %s", sessionID)
		}
		if session.IsDeleted() {
			return fmt.Errorf("session is deleted: %s", sessionID)
		}
		return nil
	}

	now := time.Now()
	return s.storage.Sessions().SaveSession(&models.Session{
		ID:        sessionID,
		UserID:    userID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
