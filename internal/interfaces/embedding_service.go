package interfaces

import (
	"context"
)

// BatchResult carries the vectors for one batch plus per-item
// degradation flags. Vectors is always the same length and order as the
// submitted texts; a degraded item holds the zero-vector placeholder.
type BatchResult struct {
	Vectors  [][]float32
	Degraded []bool
}

// EmbeddingService generates vector embeddings with provider-aware
// batching and pacing.
type EmbeddingService interface {
	// GenerateEmbedding embeds a single text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateQueryEmbedding embeds a search query (may differ from
	// document embedding in the future)
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// EmbedBatch embeds texts in fixed-size sub-batches: parallel within
	// a sub-batch, strictly sequential across sub-batches with a pacing
	// delay. A per-item failure degrades to a zero vector; the result is
	// always full-length.
	EmbedBatch(ctx context.Context, texts []string) (*BatchResult, error)

	// Dimension returns the embedding dimensionality
	Dimension() int

	// IsAvailable checks if the provider is reachable
	IsAvailable(ctx context.Context) bool
}
