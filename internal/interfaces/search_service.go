package interfaces

import (
	"context"

	"github.com/ternarybob/memoria/internal/models"
)

// RetrievalService executes scoped vector search with lexical fallback.
// Sub-search failures degrade to empty lists; the call only fails when
// no sub-search succeeds or the scope is malformed.
type RetrievalService interface {
	Search(ctx context.Context, scope *models.SearchScope, query *models.SearchQuery) (*models.SearchResults, error)
}
