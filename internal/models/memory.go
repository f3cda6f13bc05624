package models

import (
	"time"
)

// Memory is a long-term semantic unit extracted from conversations or
// documents. Body edits regenerate the embedding.
type Memory struct {
	ID     string `json:"id"` // mem_{uuid}
	UserID string `json:"user_id"`

	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	Category   string                 `json:"category"`
	Tags       []string               `json:"tags,omitempty"` // Topic/scenario tags
	Confidence float64                `json:"confidence"`     // [0,1]
	Metadata   map[string]interface{} `json:"metadata,omitempty"`

	Embedding []float32 `json:"embedding"`

	// Provenance
	SourceSessionIDs   []string `json:"source_session_ids,omitempty"`
	SourceMessageCount int      `json:"source_message_count,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchableText returns the text matched by the lexical fallback search
func (m *Memory) SearchableText() string {
	return m.Title + "\n" + m.Body
}
