package interfaces

import (
	"context"

	"github.com/ternarybob/memoria/internal/models"
)

// UpsertContextRequest regenerates a session's rolling summary. Each
// upsert supersedes the previous version; nothing is edited in place.
type UpsertContextRequest struct {
	UserID        string   `json:"user_id" validate:"required"`
	SessionID     string   `json:"session_id" validate:"required"`
	Summary       string   `json:"summary" validate:"required"`
	KeyTopics     []string `json:"key_topics,omitempty"`
	MessageCount  int      `json:"message_count" validate:"gte=0"`
	ContextWeight float64  `json:"context_weight" validate:"gte=0,lte=1"`
}

// ContextService maintains the versioned short-term context per session
type ContextService interface {
	// GetContext returns the current summary plus the raw ordered
	// message window. Readable for soft-deleted sessions until the
	// retention purge runs.
	GetContext(ctx context.Context, userID, sessionID string) (*models.ContextBundle, error)

	// UpsertContext writes a new context version for the session
	UpsertContext(ctx context.Context, req *UpsertContextRequest) (*models.ShortTermContext, error)

	// AppendMessage records a conversation turn, embedding it when the
	// provider is available so it participates in message search.
	AppendMessage(ctx context.Context, userID, sessionID, role, content string) (*models.Message, error)
}
