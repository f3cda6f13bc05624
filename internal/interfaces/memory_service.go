package interfaces

import (
	"context"

	"github.com/ternarybob/memoria/internal/models"
)

// CreateMemoryRequest carries a new long-term memory
type CreateMemoryRequest struct {
	UserID     string                 `json:"user_id" validate:"required"`
	Title      string                 `json:"title" validate:"required"`
	Body       string                 `json:"body" validate:"required"`
	Category   string                 `json:"category,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Confidence float64                `json:"confidence" validate:"gte=0,lte=1"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`

	// Provenance
	SourceSessionIDs   []string `json:"source_session_ids,omitempty"`
	SourceMessageCount int      `json:"source_message_count,omitempty"`
}

// UpdateMemoryRequest mutates an existing memory. A body change
// regenerates the embedding.
type UpdateMemoryRequest struct {
	UserID     string                 `json:"user_id" validate:"required"`
	Title      string                 `json:"title,omitempty"`
	Body       string                 `json:"body,omitempty"`
	Category   string                 `json:"category,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Confidence *float64               `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// MemoryService manages long-term memories and their embeddings
type MemoryService interface {
	CreateMemory(ctx context.Context, req *CreateMemoryRequest) (*models.Memory, error)
	UpdateMemory(ctx context.Context, memoryID string, req *UpdateMemoryRequest) (*models.Memory, error)
	GetMemory(ctx context.Context, memoryID, userID string) (*models.Memory, error)
	DeleteMemory(ctx context.Context, memoryID, userID string) error
	ListMemories(ctx context.Context, userID, category string, limit, offset int) ([]*models.Memory, error)
}
