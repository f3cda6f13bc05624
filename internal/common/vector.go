package common

import (
	"math"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero-magnitude vectors, so degraded
// zero-vector chunks never rank above the similarity threshold.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// IsZeroVector reports whether every component of the vector is zero.
// Zero vectors are the degraded placeholder written when an embedding
// call fails for a single item.
func IsZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return len(v) > 0
}

// EstimateTokens approximates the token count of a text using the
// 4-characters-per-token heuristic shared by the chunker and batcher.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
