package models

// SearchType indicates which retrieval path produced a result set, so
// callers can distinguish semantic hits from lexical fallback.
type SearchType string

const (
	// SearchTypeVector indicates vector-similarity search was used
	SearchTypeVector SearchType = "vector"
	// SearchTypeText indicates the case-insensitive substring fallback was used
	SearchTypeText SearchType = "text"
	// SearchTypeNone indicates no search path produced signal
	SearchTypeNone SearchType = "none"
)

// SearchScope identifies the owning user and optionally narrows the
// search to one session or one document. UserID is mandatory; a query
// never returns another user's rows.
type SearchScope struct {
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// SearchQuery carries either raw text (embedded on the fly) or a
// precomputed vector, plus the similarity threshold and result cap.
type SearchQuery struct {
	Text   string    `json:"text,omitempty"`
	Vector []float32 `json:"vector,omitempty"`

	Threshold float64 `json:"threshold"` // Minimum similarity for vector results
	Limit     int     `json:"limit"`     // Per-list result cap

	// Which record families to search. Both default to memories-only
	// when neither is set.
	SearchMemories bool `json:"search_memories"`
	SearchMessages bool `json:"search_messages"`
	SearchChunks   bool `json:"search_chunks"`
}

// MemoryResult is a memory hit. Similarity is nil for lexical fallback
// results, which carry no score.
type MemoryResult struct {
	Memory     *Memory  `json:"memory"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// MessageResult is a message hit from the conversation history
type MessageResult struct {
	Message    *Message `json:"message"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// ChunkResult is a document chunk hit
type ChunkResult struct {
	Chunk      *Chunk   `json:"chunk"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// SearchResults holds the independent per-family result lists. Memories
// and messages are deliberately never merged into one ranked list:
// callers want provenance. Total is the sum of the list sizes.
type SearchResults struct {
	SearchType SearchType       `json:"search_type"`
	Memories   []*MemoryResult  `json:"memories,omitempty"`
	Messages   []*MessageResult `json:"messages,omitempty"`
	Chunks     []*ChunkResult   `json:"chunks,omitempty"`
	Total      int              `json:"total"`
}
