// -----------------------------------------------------------------------
// Ingestion Orchestrator - Drives extract -> chunk -> embed -> persist
// All document status writes flow through the status state machine
// -----------------------------------------------------------------------

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
	"github.com/ternarybob/memoria/internal/services/chunker"
)

var validate = validator.New()

// Orchestrator implements IngestionService
type Orchestrator struct {
	storage          interfaces.StorageManager
	extractor        interfaces.ContentExtractor
	chunker          *chunker.Service
	embeddingService interfaces.EmbeddingService
	eventService     interfaces.EventService
	config           *common.Config
	logger           arbor.ILogger
}

// NewOrchestrator creates the ingestion service
func NewOrchestrator(
	storage interfaces.StorageManager,
	extractor interfaces.ContentExtractor,
	chunkerService *chunker.Service,
	embeddingService interfaces.EmbeddingService,
	eventService interfaces.EventService,
	config *common.Config,
	logger arbor.ILogger,
) interfaces.IngestionService {
	return &Orchestrator{
		storage:          storage,
		extractor:        extractor,
		chunker:          chunkerService,
		embeddingService: embeddingService,
		eventService:     eventService,
		config:           config,
		logger:           logger,
	}
}

// CreateDocument stores the raw payload and registers a pending document.
// Unsupported media types are rejected here, before any blob write.
func (o *Orchestrator) CreateDocument(ctx context.Context, req *interfaces.CreateDocumentRequest) (*models.Document, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid document request: %w", err)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("document payload is empty")
	}
	if !o.extractor.Supports(req.MediaType) {
		return nil, fmt.Errorf("unsupported media type: %s", req.MediaType)
	}

	now := time.Now()
	doc := &models.Document{
		ID:        common.NewDocumentID(),
		UserID:    req.UserID,
		FileName:  req.FileName,
		MediaType: req.MediaType,
		SizeBytes: int64(len(req.Data)),
		SourceURL: req.SourceURL,
		Inline:    req.Inline,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.StorageKey = fmt.Sprintf("documents/%s", doc.ID)

	if err := o.storage.Blobs().Upload(doc.StorageKey, req.Data); err != nil {
		return nil, fmt.Errorf("failed to store document payload: %w", err)
	}

	if err := o.storage.Documents().SaveDocument(doc); err != nil {
		// Do not leave an orphaned blob behind
		o.storage.Blobs().Delete(doc.StorageKey)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	o.logger.Info().
		Str("doc_id", doc.ID).
		Str("user_id", doc.UserID).
		Str("media_type", doc.MediaType).
		Int64("size_bytes", doc.SizeBytes).
		Msg("Document created")

	return doc, nil
}

// ProcessDocument runs the ingestion pipeline to completion or failure.
// Chunks are persisted incrementally batch by batch, with a progress
// event after each persisted batch.
func (o *Orchestrator) ProcessDocument(ctx context.Context, documentID, userID string) error {
	doc, err := o.ownedDocument(documentID, userID)
	if err != nil {
		return err
	}

	if err := o.setStatus(doc, models.StatusProcessing); err != nil {
		return err
	}
	o.publish(ctx, interfaces.EventDocumentProcessing, doc, nil)

	persisted, err := o.runPipeline(ctx, doc)
	if err != nil {
		o.markFailed(ctx, doc, err)
		return err
	}

	now := time.Now()
	doc.ChunkCount = persisted
	doc.ProcessedAt = &now
	doc.LastError = ""
	if err := o.setStatus(doc, models.StatusCompleted); err != nil {
		return err
	}
	o.publish(ctx, interfaces.EventDocumentCompleted, doc, map[string]interface{}{
		"chunk_count": persisted,
	})

	o.logger.Info().
		Str("doc_id", doc.ID).
		Int("chunk_count", persisted).
		Msg("Document processed")

	return nil
}

// GetDocument returns the document for status polling. Soft-deleted
// documents are reported as not found.
func (o *Orchestrator) GetDocument(ctx context.Context, documentID, userID string) (*models.Document, error) {
	return o.ownedDocument(documentID, userID)
}

// DeleteDocument soft-deletes the document and removes its chunks from
// retrieval immediately. The blob and the document record are purged
// later by the retention job.
func (o *Orchestrator) DeleteDocument(ctx context.Context, documentID, userID string) error {
	doc, err := o.ownedDocument(documentID, userID)
	if err != nil {
		return err
	}

	if err := o.storage.Documents().DeleteChunks(doc.ID); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	if err := o.storage.Documents().SoftDeleteDocument(doc.ID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	o.logger.Info().
		Str("doc_id", doc.ID).
		Str("user_id", userID).
		Msg("Document soft-deleted")

	return nil
}

// runPipeline executes extract, chunk, embed and persist. Returns the
// number of chunks persisted.
func (o *Orchestrator) runPipeline(ctx context.Context, doc *models.Document) (int, error) {
	data, err := o.storage.Blobs().Download(doc.StorageKey)
	if err != nil {
		return 0, fmt.Errorf("failed to load document payload: %w", err)
	}

	text, err := o.extractor.Extract(ctx, data, doc.MediaType, doc.SourceURL)
	if err != nil {
		return 0, fmt.Errorf("content extraction failed: %w", err)
	}

	tokenBudget := o.config.Ingestion.ChunkTokenBudget
	if doc.Inline {
		tokenBudget = o.config.Ingestion.InlineTokenBudget
	}
	pieces := o.chunker.Chunk(text, chunker.MaxCharsForTokens(tokenBudget))
	if len(pieces) == 0 {
		return 0, fmt.Errorf("chunking produced no chunks")
	}

	// A fresh run supersedes any chunks from a previous interrupted run
	if err := o.storage.Documents().DeleteChunks(doc.ID); err != nil {
		return 0, fmt.Errorf("failed to clear previous chunks: %w", err)
	}

	batchSize := o.config.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	persisted := 0
	for start := 0; start < len(pieces); start += batchSize {
		end := start + batchSize
		if end > len(pieces) {
			end = len(pieces)
		}
		batch := pieces[start:end]

		texts := make([]string, len(batch))
		for i, piece := range batch {
			texts[i] = piece.Content
		}

		embedded, err := o.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			return persisted, fmt.Errorf("embedding failed at chunk %d: %w", start, err)
		}

		chunks := make([]*models.Chunk, len(batch))
		for i, piece := range batch {
			chunks[i] = &models.Chunk{
				ID:            common.NewChunkID(),
				DocumentID:    doc.ID,
				UserID:        doc.UserID,
				Ordinal:       piece.Ordinal,
				Page:          piece.Page,
				Content:       piece.Content,
				TokenEstimate: common.EstimateTokens(piece.Content),
				Embedding:     embedded.Vectors[i],
				Degraded:      embedded.Degraded[i],
				CreatedAt:     time.Now(),
			}
		}

		if err := o.storage.Documents().SaveChunks(chunks); err != nil {
			return persisted, fmt.Errorf("failed to persist chunks at %d: %w", start, err)
		}
		persisted += len(chunks)

		o.publish(ctx, interfaces.EventDocumentProgress, doc, map[string]interface{}{
			"chunks_persisted": persisted,
			"chunks_total":     len(pieces),
		})
	}

	return persisted, nil
}

// ownedDocument loads a live document and enforces ownership. A
// document owned by another user is indistinguishable from a missing
// one.
func (o *Orchestrator) ownedDocument(documentID, userID string) (*models.Document, error) {
	doc, err := o.storage.Documents().GetDocument(documentID)
	if err != nil {
		return nil, fmt.Errorf("document not found: %s", documentID)
	}
	if doc.UserID != userID || doc.DeletedAt != nil {
		return nil, fmt.Errorf("document not found: %s", documentID)
	}
	return doc, nil
}

// setStatus applies a state machine transition and persists it
func (o *Orchestrator) setStatus(doc *models.Document, next models.DocumentStatus) error {
	status, err := doc.Status.Transition(next)
	if err != nil {
		return err
	}
	doc.Status = status
	doc.UpdatedAt = time.Now()
	if err := o.storage.Documents().UpdateDocument(doc); err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return nil
}

// markFailed records the failure reason. The transition error is only
// logged: the pipeline error is what the caller needs to see.
func (o *Orchestrator) markFailed(ctx context.Context, doc *models.Document, cause error) {
	doc.LastError = cause.Error()
	if err := o.setStatus(doc, models.StatusFailed); err != nil {
		o.logger.Error().
			Err(err).
			Str("doc_id", doc.ID).
			Msg("Failed to mark document as failed")
	}

	o.publish(ctx, interfaces.EventDocumentFailed, doc, map[string]interface{}{
		"error": cause.Error(),
	})

	o.logger.Warn().
		Err(cause).
		Str("doc_id", doc.ID).
		Msg("Document processing failed")
}

func (o *Orchestrator) publish(ctx context.Context, eventType interfaces.EventType, doc *models.Document, extra map[string]interface{}) {
	payload := map[string]interface{}{
		"document_id": doc.ID,
		"user_id":     doc.UserID,
		"status":      string(doc.Status),
	}
	for k, v := range extra {
		payload[k] = v
	}

	o.eventService.Publish(ctx, interfaces.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
