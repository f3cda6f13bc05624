package embeddings

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/memoria/internal/interfaces"
)

// EmbedBatch embeds texts in fixed-size sub-batches. Items within a
// sub-batch run in parallel; sub-batches run strictly in sequence with
// the pacer gating each one. A failed item degrades to a zero vector of
// the configured dimension and is flagged, so the result always has one
// entry per input in input order.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) (*interfaces.BatchResult, error) {
	result := &interfaces.BatchResult{
		Vectors:  make([][]float32, len(texts)),
		Degraded: make([]bool, len(texts)),
	}

	if len(texts) == 0 {
		return result, nil
	}

	batches := 0
	for start := 0; start < len(texts); start += s.batchSize {
		if err := s.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batchStart := time.Now()
		s.embedSubBatch(ctx, texts[start:end], result.Vectors[start:end], result.Degraded[start:end])
		batches++

		s.logger.Debug().
			Int("batch_index", batches-1).
			Int("batch_size", end-start).
			Dur("duration", time.Since(batchStart)).
			Msg("Embedded batch")
	}

	degradedCount := 0
	for _, d := range result.Degraded {
		if d {
			degradedCount++
		}
	}
	if degradedCount > 0 {
		s.logger.Warn().
			Int("degraded", degradedCount).
			Int("total", len(texts)).
			Msg("Some embeddings degraded to zero vectors")
	}

	return result, nil
}

// embedSubBatch fans out one sub-batch. Slices are windows into the
// full result, indexed locally.
func (s *Service) embedSubBatch(ctx context.Context, texts []string, vectors [][]float32, degraded []bool) {
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()

			vector, err := s.GenerateEmbedding(ctx, text)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Int("text_length", len(text)).
					Msg("Embedding failed, storing zero vector")
				vectors[i] = make([]float32, s.dimension)
				degraded[i] = true
				return
			}

			vectors[i] = vector
		}(i, text)
	}
	wg.Wait()
}
