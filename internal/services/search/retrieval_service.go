// -----------------------------------------------------------------------
// Retrieval Service - Scoped vector search with lexical fallback
// Memories, messages and chunks are searched as independent lists
// -----------------------------------------------------------------------

package search

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
)

// Service implements RetrievalService
type Service struct {
	storage          interfaces.StorageManager
	embeddingService interfaces.EmbeddingService
	config           *common.Config
	logger           arbor.ILogger
}

// NewService creates the retrieval service
func NewService(
	storage interfaces.StorageManager,
	embeddingService interfaces.EmbeddingService,
	config *common.Config,
	logger arbor.ILogger,
) interfaces.RetrievalService {
	return &Service{
		storage:          storage,
		embeddingService: embeddingService,
		config:           config,
		logger:           logger,
	}
}

// Search runs the enabled sub-searches against the scope. Vector search
// is preferred; when no usable vector can be obtained the query text is
// matched as a case-insensitive substring instead. Sub-search failures
// degrade to empty lists unless every enabled sub-search fails.
func (s *Service) Search(ctx context.Context, scope *models.SearchScope, query *models.SearchQuery) (*models.SearchResults, error) {
	if scope == nil || scope.UserID == "" {
		return nil, fmt.Errorf("search scope requires a user id")
	}
	// A query with no text and no vector carries no signal: an empty
	// result set, never an error, and never a match-everything scan.
	if query == nil || (query.Text == "" && len(query.Vector) == 0) {
		return &models.SearchResults{SearchType: models.SearchTypeNone}, nil
	}

	s.normalize(query)

	vector := s.resolveVector(ctx, query)
	if vector != nil {
		results, err := s.vectorSearch(scope, query, vector)
		if err == nil {
			return results, nil
		}
		s.logger.Warn().Err(err).Msg("Vector search failed, trying text fallback")
	}

	if query.Text != "" {
		return s.textSearch(scope, query)
	}

	// A vector-only query with a zero vector carries no signal
	return &models.SearchResults{SearchType: models.SearchTypeNone}, nil
}

// normalize applies configured defaults and caps
func (s *Service) normalize(query *models.SearchQuery) {
	if !query.SearchMemories && !query.SearchMessages && !query.SearchChunks {
		query.SearchMemories = true
	}
	if query.Threshold <= 0 {
		query.Threshold = s.config.Search.DefaultThreshold
	}
	if query.Limit <= 0 {
		query.Limit = s.config.Search.DefaultLimit
	}
	if query.Limit > s.config.Search.MaxLimit {
		query.Limit = s.config.Search.MaxLimit
	}
}

// resolveVector returns the query vector, embedding the text when
// needed. A zero vector is treated as no vector at all.
func (s *Service) resolveVector(ctx context.Context, query *models.SearchQuery) []float32 {
	if len(query.Vector) > 0 {
		if common.IsZeroVector(query.Vector) {
			s.logger.Debug().Msg("Supplied query vector is all zeros, ignoring")
			return nil
		}
		return query.Vector
	}

	if query.Text == "" || !s.embeddingService.IsAvailable(ctx) {
		return nil
	}

	vector, err := s.embeddingService.GenerateQueryEmbedding(ctx, query.Text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Query embedding failed, falling back to text search")
		return nil
	}
	if common.IsZeroVector(vector) {
		return nil
	}
	return vector
}

func (s *Service) vectorSearch(scope *models.SearchScope, query *models.SearchQuery, vector []float32) (*models.SearchResults, error) {
	results := &models.SearchResults{SearchType: models.SearchTypeVector}

	attempted := 0
	failed := 0

	if query.SearchMemories {
		attempted++
		memories, err := s.storage.Memories().SimilarMemories(scope.UserID, vector, query.Threshold, query.Limit)
		if err != nil {
			failed++
			s.logger.Warn().Err(err).Msg("Memory vector search failed")
		} else {
			results.Memories = memories
		}
	}

	if query.SearchMessages {
		attempted++
		messages, err := s.storage.Sessions().SimilarMessages(scope.UserID, scope.SessionID, vector, query.Threshold, query.Limit)
		if err != nil {
			failed++
			s.logger.Warn().Err(err).Msg("Message vector search failed")
		} else {
			results.Messages = messages
		}
	}

	if query.SearchChunks {
		attempted++
		chunks, err := s.storage.Documents().SimilarChunks(scope.UserID, scope.DocumentID, vector, query.Threshold, query.Limit)
		if err != nil {
			failed++
			s.logger.Warn().Err(err).Msg("Chunk vector search failed")
		} else {
			results.Chunks = chunks
		}
	}

	if attempted > 0 && failed == attempted {
		return nil, fmt.Errorf("all vector sub-searches failed")
	}

	results.Total = len(results.Memories) + len(results.Messages) + len(results.Chunks)

	s.logger.Debug().
		Str("user_id", scope.UserID).
		Int("memories", len(results.Memories)).
		Int("messages", len(results.Messages)).
		Int("chunks", len(results.Chunks)).
		Msg("Vector search completed")

	return results, nil
}

// textSearch is the lexical fallback. Results carry no similarity
// score. Chunks have no lexical index, so the chunk list stays empty.
func (s *Service) textSearch(scope *models.SearchScope, query *models.SearchQuery) (*models.SearchResults, error) {
	results := &models.SearchResults{SearchType: models.SearchTypeText}

	attempted := 0
	failed := 0

	if query.SearchMemories {
		attempted++
		memories, err := s.storage.Memories().TextSearchMemories(scope.UserID, query.Text, query.Limit)
		if err != nil {
			failed++
			s.logger.Warn().Err(err).Msg("Memory text search failed")
		} else {
			for _, mem := range memories {
				results.Memories = append(results.Memories, &models.MemoryResult{Memory: mem})
			}
		}
	}

	if query.SearchMessages {
		attempted++
		messages, err := s.storage.Sessions().TextSearchMessages(scope.UserID, scope.SessionID, query.Text, query.Limit)
		if err != nil {
			failed++
			s.logger.Warn().Err(err).Msg("Message text search failed")
		} else {
			for _, msg := range messages {
				results.Messages = append(results.Messages, &models.MessageResult{Message: msg})
			}
		}
	}

	if attempted > 0 && failed == attempted {
		return nil, fmt.Errorf("all text sub-searches failed")
	}

	results.Total = len(results.Memories) + len(results.Messages) + len(results.Chunks)

	s.logger.Debug().
		Str("user_id", scope.UserID).
		Int("memories", len(results.Memories)).
		Int("messages", len(results.Messages)).
		Msg("Text search completed")

	return results, nil
}
