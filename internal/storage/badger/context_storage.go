package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ContextStorage implements the ContextStorage interface for Badger
type ContextStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewContextStorage creates a new ContextStorage instance
func NewContextStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ContextStorage {
	return &ContextStorage{
		db:     db,
		logger: logger,
	}
}

// SaveContext inserts a new context version. Versions are immutable;
// supersession happens by writing a higher version, never by editing.
func (s *ContextStorage) SaveContext(ctx *models.ShortTermContext) error {
	if ctx.ID == "" {
		return fmt.Errorf("context ID is required")
	}
	if ctx.UserID == "" || ctx.SessionID == "" {
		return fmt.Errorf("context user ID and session ID are required")
	}

	now := time.Now()
	if ctx.CreatedAt.IsZero() {
		ctx.CreatedAt = now
	}
	if ctx.LastAccessedAt.IsZero() {
		ctx.LastAccessedAt = now
	}

	if err := s.db.Store().Insert(ctx.ID, ctx); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	return nil
}

// GetCurrentContext returns the highest-version context for the session,
// or nil when the session has no context yet.
func (s *ContextStorage) GetCurrentContext(userID, sessionID string) (*models.ShortTermContext, error) {
	contexts, err := s.GetContextHistory(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		return nil, nil
	}
	return contexts[0], nil
}

// GetContextHistory returns all context versions for the session,
// newest version first.
func (s *ContextStorage) GetContextHistory(userID, sessionID string) ([]*models.ShortTermContext, error) {
	var contexts []models.ShortTermContext
	query := badgerhold.Where("UserID").Eq(userID).And("SessionID").Eq(sessionID)
	if err := s.db.Store().Find(&contexts, query); err != nil {
		return nil, fmt.Errorf("failed to get context history: %w", err)
	}

	sort.Slice(contexts, func(i, j int) bool {
		return contexts[i].Version > contexts[j].Version
	})

	result := make([]*models.ShortTermContext, len(contexts))
	for i := range contexts {
		result[i] = &contexts[i]
	}
	return result, nil
}

func (s *ContextStorage) DeleteContextsForSession(sessionID string) error {
	if err := s.db.Store().DeleteMatching(&models.ShortTermContext{}, badgerhold.Where("SessionID").Eq(sessionID)); err != nil {
		return fmt.Errorf("failed to delete contexts for session %s: %w", sessionID, err)
	}
	return nil
}

func (s *ContextStorage) TouchContext(id string, accessedAt time.Time) error {
	var ctx models.ShortTermContext
	if err := s.db.Store().Get(id, &ctx); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("context not found: %s", id)
		}
		return fmt.Errorf("failed to get context: %w", err)
	}
	ctx.LastAccessedAt = accessedAt
	if err := s.db.Store().Update(id, &ctx); err != nil {
		return fmt.Errorf("failed to touch context: %w", err)
	}
	return nil
}
