package interfaces

import (
	"context"

	"github.com/ternarybob/memoria/internal/models"
)

// CreateDocumentRequest carries an upload into the ingestion pipeline
type CreateDocumentRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
	MediaType string `json:"media_type" validate:"required"`
	SourceURL string `json:"source_url,omitempty"`
	Inline    bool   `json:"inline"`
	Data      []byte `json:"-"`
}

// IngestionService drives the extract -> chunk -> embed -> persist
// pipeline and the document status state machine.
type IngestionService interface {
	// CreateDocument stores the raw bytes and registers a pending document
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// ProcessDocument runs the full ingestion pipeline for a pending
	// document. It runs to completion or failure; retries are the
	// caller's responsibility.
	ProcessDocument(ctx context.Context, documentID, userID string) error

	// GetDocument returns a document for status polling, enforcing ownership
	GetDocument(ctx context.Context, documentID, userID string) (*models.Document, error)

	// DeleteDocument soft-deletes a document and removes its chunks from
	// retrieval; the blob and record are purged by the retention job.
	DeleteDocument(ctx context.Context, documentID, userID string) error
}
