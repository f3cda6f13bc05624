package embeddings

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// Service implements EmbeddingService interface
type Service struct {
	llmService    interfaces.LLMService
	dimension     int
	batchSize     int
	maxInputChars int
	pacer         *rate.Limiter
	logger        arbor.ILogger
}

// NewService creates a new embedding service. batchDelay paces
// consecutive sub-batches to stay inside provider rate limits.
func NewService(llmService interfaces.LLMService, cfg *common.Config, logger arbor.ILogger) interfaces.EmbeddingService {
	batchSize := cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	delay := cfg.Embedding.BatchDelayDuration()
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	return &Service{
		llmService:    llmService,
		dimension:     cfg.Embedding.Dimension,
		batchSize:     batchSize,
		maxInputChars: cfg.Embedding.MaxInputChars,
		pacer:         rate.NewLimiter(rate.Every(delay), 1),
		logger:        logger,
	}
}

// GenerateEmbedding creates a vector embedding for text
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	text = s.truncate(text)

	start := time.Now()
	embedding, err := s.llmService.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(embedding) == 0 {
		return nil, fmt.Errorf("LLM service returned empty embedding")
	}

	s.logger.Debug().
		Str("mode", string(s.llmService.GetMode())).
		Int("embedding_dim", len(embedding)).
		Dur("duration", duration).
		Msg("Generated embedding")

	return embedding, nil
}

// GenerateQueryEmbedding generates embedding for search query
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

// Dimension returns the embedding dimension
func (s *Service) Dimension() int {
	return s.dimension
}

// IsAvailable checks if the embedding service is available
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.llmService == nil {
		return false
	}

	err := s.llmService.HealthCheck(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("LLM service not available")
		return false
	}

	return true
}

// truncate caps input length so oversized chunks never hit provider
// input limits. The cut backs up to a rune boundary so the provider
// never receives invalid UTF-8.
func (s *Service) truncate(text string) string {
	if s.maxInputChars <= 0 || len(text) <= s.maxInputChars {
		return text
	}

	cut := s.maxInputChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
