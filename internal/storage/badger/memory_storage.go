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

// MemoryStorage implements the MemoryStorage interface for Badger
type MemoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMemoryStorage creates a new MemoryStorage instance
func NewMemoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MemoryStorage {
	return &MemoryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MemoryStorage) SaveMemory(mem *models.Memory) error {
	if mem.ID == "" {
		return fmt.Errorf("memory ID is required")
	}
	if mem.UserID == "" {
		return fmt.Errorf("memory user ID is required")
	}

	now := time.Now()
	if mem.CreatedAt.IsZero() {
		mem.CreatedAt = now
	}
	mem.UpdatedAt = now

	if err := s.db.Store().Upsert(mem.ID, mem); err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}
	return nil
}

func (s *MemoryStorage) GetMemory(id string) (*models.Memory, error) {
	var mem models.Memory
	if err := s.db.Store().Get(id, &mem); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("memory not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	return &mem, nil
}

func (s *MemoryStorage) DeleteMemory(id string) error {
	if err := s.db.Store().Delete(id, &models.Memory{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	return nil
}

func (s *MemoryStorage) ListMemories(opts *interfaces.ListOptions) ([]*models.Memory, error) {
	query := badgerhold.Where("ID").Ne("")
	if opts != nil {
		if opts.UserID != "" {
			query = badgerhold.Where("UserID").Eq(opts.UserID)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
	}

	var memories []models.Memory
	if err := s.db.Store().Find(&memories, query); err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}

	result := make([]*models.Memory, len(memories))
	for i := range memories {
		result[i] = &memories[i]
	}
	return result, nil
}

func (s *MemoryStorage) ListMemoriesByCategory(userID, category string, limit int) ([]*models.Memory, error) {
	query := badgerhold.Where("UserID").Eq(userID).And("Category").Eq(category)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var memories []models.Memory
	if err := s.db.Store().Find(&memories, query); err != nil {
		return nil, fmt.Errorf("failed to list memories by category: %w", err)
	}

	result := make([]*models.Memory, len(memories))
	for i := range memories {
		result[i] = &memories[i]
	}
	return result, nil
}

// SimilarMemories returns memories at or above threshold ordered by
// descending similarity. Ties keep insertion order via the stable sort.
func (s *MemoryStorage) SimilarMemories(userID string, vector []float32, threshold float64, limit int) ([]*models.MemoryResult, error) {
	var memories []models.Memory
	if err := s.db.Store().Find(&memories, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("memory similarity search failed: %w", err)
	}

	results := make([]*models.MemoryResult, 0)
	for i := range memories {
		sim := common.CosineSimilarity(vector, memories[i].Embedding)
		if sim >= threshold {
			score := sim
			results = append(results, &models.MemoryResult{Memory: &memories[i], Similarity: &score})
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

// TextSearchMemories is the case-insensitive substring fallback over
// title and body. An empty query matches nothing.
func (s *MemoryStorage) TextSearchMemories(userID, query string, limit int) ([]*models.Memory, error) {
	if query == "" {
		return []*models.Memory{}, nil
	}

	// Escape regex special characters to treat the query as literal text
	regex, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	q := badgerhold.Where("UserID").Eq(userID).And("Body").RegExp(regex).
		Or(badgerhold.Where("UserID").Eq(userID).And("Title").RegExp(regex))
	if limit > 0 {
		q = q.Limit(limit)
	}

	var memories []models.Memory
	if err := s.db.Store().Find(&memories, q); err != nil {
		return nil, fmt.Errorf("memory text search failed: %w", err)
	}

	result := make([]*models.Memory, len(memories))
	for i := range memories {
		result[i] = &memories[i]
	}
	return result, nil
}
