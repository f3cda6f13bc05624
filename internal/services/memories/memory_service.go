// -----------------------------------------------------------------------
// Memory Service - CRUD for long-term memories
// Body changes regenerate the embedding; failures degrade to zero vectors
// -----------------------------------------------------------------------

package memories

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

var validate = validator.New()

// Service implements MemoryService
type Service struct {
	storage          interfaces.StorageManager
	embeddingService interfaces.EmbeddingService
	logger           arbor.ILogger
}

// NewService creates the memory service
func NewService(storage interfaces.StorageManager, embeddingService interfaces.EmbeddingService, logger arbor.ILogger) interfaces.MemoryService {
	return &Service{
		storage:          storage,
		embeddingService: embeddingService,
		logger:           logger,
	}
}

// CreateMemory stores a new memory with its embedding
func (s *Service) CreateMemory(ctx context.Context, req *interfaces.CreateMemoryRequest) (*models.Memory, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid memory request: %w", err)
	}

	now := time.Now()
	mem := &models.Memory{
		ID:                 common.NewMemoryID(),
		UserID:             req.UserID,
		Title:              req.Title,
		Body:               req.Body,
		Category:           req.Category,
		Tags:               req.Tags,
		Confidence:         req.Confidence,
		Metadata:           req.Metadata,
		SourceSessionIDs:   req.SourceSessionIDs,
		SourceMessageCount: req.SourceMessageCount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	mem.Embedding = s.embed(ctx, mem.SearchableText())

	if err := s.storage.Memories().SaveMemory(mem); err != nil {
		return nil, fmt.Errorf("failed to save memory: %w", err)
	}

	s.logger.Debug().
		Str("memory_id", mem.ID).
		Str("user_id", mem.UserID).
		Str("category", mem.Category).
		Msg("Memory created")

	return mem, nil
}

// UpdateMemory applies partial changes. Title or body edits regenerate
// the embedding so search never matches stale text.
func (s *Service) UpdateMemory(ctx context.Context, memoryID string, req *interfaces.UpdateMemoryRequest) (*models.Memory, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid memory request: %w", err)
	}

	mem, err := s.ownedMemory(memoryID, req.UserID)
	if err != nil {
		return nil, err
	}

	textChanged := false
	if req.Title != "" && req.Title != mem.Title {
		mem.Title = req.Title
		textChanged = true
	}
	if req.Body != "" && req.Body != mem.Body {
		mem.Body = req.Body
		textChanged = true
	}
	if req.Category != "" {
		mem.Category = req.Category
	}
	if req.Tags != nil {
		mem.Tags = req.Tags
	}
	if req.Confidence != nil {
		mem.Confidence = *req.Confidence
	}
	if req.Metadata != nil {
		mem.Metadata = req.Metadata
	}

	if textChanged {
		mem.Embedding = s.embed(ctx, mem.SearchableText())
	}

	if err := s.storage.Memories().SaveMemory(mem); err != nil {
		return nil, fmt.Errorf("failed to update memory: %w", err)
	}

	return mem, nil
}

// GetMemory returns a memory, enforcing ownership
func (s *Service) GetMemory(ctx context.Context, memoryID, userID string) (*models.Memory, error) {
	return s.ownedMemory(memoryID, userID)
}

// DeleteMemory removes a memory. Memories are small and have no
// children, so deletion is physical rather than soft.
func (s *Service) DeleteMemory(ctx context.Context, memoryID, userID string) error {
	if _, err := s.ownedMemory(memoryID, userID); err != nil {
		return err
	}
	return s.storage.Memories().DeleteMemory(memoryID)
}

// ListMemories lists a user's memories, optionally by category
func (s *Service) ListMemories(ctx context.Context, userID, category string, limit, offset int) ([]*models.Memory, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	if category != "" {
		return s.storage.Memories().ListMemoriesByCategory(userID, category, limit)
	}

	return s.storage.Memories().ListMemories(&interfaces.ListOptions{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
}

// embed generates the memory embedding, degrading to a zero vector so
// a provider outage never blocks a write. Lexical search still works.
func (s *Service) embed(ctx context.Context, text string) []float32 {
	vector, err := s.embeddingService.GenerateEmbedding(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Memory embedding failed, storing zero vector")
		return make([]float32, s.embeddingService.Dimension())
	}
	return vector
}

func (s *Service) ownedMemory(memoryID, userID string) (*models.Memory, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	mem, err := s.storage.Memories().GetMemory(memoryID)
	if err != nil {
		return nil, fmt.Errorf("memory not found: %s", memoryID)
	}
	if mem.UserID != userID {
		return nil, fmt.Errorf("memory not found: %s", memoryID)
	}
	return mem, nil
}
