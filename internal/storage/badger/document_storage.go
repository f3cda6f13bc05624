package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if doc.UserID == "" {
		return fmt.Errorf("document user ID is required")
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) UpdateDocument(doc *models.Document) error {
	return s.SaveDocument(doc)
}

func (s *DocumentStorage) SoftDeleteDocument(id string) error {
	doc, err := s.GetDocument(id)
	if err != nil {
		return err
	}
	now := time.Now()
	doc.DeletedAt = &now
	return s.SaveDocument(doc)
}

func (s *DocumentStorage) ListDocuments(opts *interfaces.ListOptions) ([]*models.Document, error) {
	query := badgerhold.Where("ID").Ne("")
	if opts != nil && opts.UserID != "" {
		query = badgerhold.Where("UserID").Eq(opts.UserID)
	}

	var docs []models.Document
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	// Soft-deleted documents are excluded from listings but remain
	// fetchable by ID until the retention purge runs.
	result := make([]*models.Document, 0, len(docs))
	skipped := 0
	for i := range docs {
		if docs[i].DeletedAt != nil {
			continue
		}
		if opts != nil && opts.Offset > 0 && skipped < opts.Offset {
			skipped++
			continue
		}
		result = append(result, &docs[i])
		if opts != nil && opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}
	return result, nil
}

func (s *DocumentStorage) CountDocuments(userID string) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, badgerhold.Where("UserID").Eq(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

// SaveChunks persists one batch of chunks. Chunks are append-only; a
// batch either fully persists or the error aborts the ingestion run.
func (s *DocumentStorage) SaveChunks(chunks []*models.Chunk) error {
	for _, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("chunk ID is required")
		}
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = time.Now()
		}
		if err := s.db.Store().Insert(chunk.ID, chunk); err != nil {
			return fmt.Errorf("failed to save chunk %d of document %s: %w", chunk.Ordinal, chunk.DocumentID, err)
		}
	}
	return nil
}

func (s *DocumentStorage) GetChunks(documentID string) ([]*models.Chunk, error) {
	var chunks []models.Chunk
	if err := s.db.Store().Find(&chunks, badgerhold.Where("DocumentID").Eq(documentID)); err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Ordinal < chunks[j].Ordinal
	})

	result := make([]*models.Chunk, len(chunks))
	for i := range chunks {
		result[i] = &chunks[i]
	}
	return result, nil
}

func (s *DocumentStorage) CountChunks(documentID string) (int, error) {
	count, err := s.db.Store().Count(&models.Chunk{}, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) DeleteChunks(documentID string) error {
	if err := s.db.Store().DeleteMatching(&models.Chunk{}, badgerhold.Where("DocumentID").Eq(documentID)); err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", documentID, err)
	}
	return nil
}

// SimilarChunks is the vector-similarity primitive for chunks. Rows at
// or above threshold are returned in descending similarity order; ties
// keep ordinal order, which is stable per query.
func (s *DocumentStorage) SimilarChunks(userID, documentID string, vector []float32, threshold float64, limit int) ([]*models.ChunkResult, error) {
	query := badgerhold.Where("UserID").Eq(userID)
	if documentID != "" {
		query = query.And("DocumentID").Eq(documentID)
	}

	var chunks []models.Chunk
	if err := s.db.Store().Find(&chunks, query); err != nil {
		return nil, fmt.Errorf("chunk similarity search failed: %w", err)
	}

	results := make([]*models.ChunkResult, 0)
	for i := range chunks {
		sim := common.CosineSimilarity(vector, chunks[i].Embedding)
		if sim >= threshold {
			score := sim
			results = append(results, &models.ChunkResult{Chunk: &chunks[i], Similarity: &score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].Similarity > *results[j].Similarity
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *DocumentStorage) DocumentsDeletedBefore(cutoff time.Time, limit int) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to find soft-deleted documents: %w", err)
	}

	result := make([]*models.Document, 0)
	for i := range docs {
		if docs[i].DeletedAt != nil && docs[i].DeletedAt.Before(cutoff) {
			result = append(result, &docs[i])
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (s *DocumentStorage) PurgeDocument(id string) error {
	if err := s.DeleteChunks(id); err != nil {
		return err
	}
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to purge document %s: %w", id, err)
	}
	return nil
}
