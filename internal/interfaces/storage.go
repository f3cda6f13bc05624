package interfaces

import (
	"time"

	"github.com/ternarybob/memoria/internal/models"
)

// ListOptions provides filtering and pagination for list operations
type ListOptions struct {
	UserID string
	Limit  int
	Offset int
}

// DocumentStorage defines document and chunk persistence operations
type DocumentStorage interface {
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	UpdateDocument(doc *models.Document) error
	SoftDeleteDocument(id string) error
	ListDocuments(opts *ListOptions) ([]*models.Document, error)
	CountDocuments(userID string) (int, error)

	// Chunk persistence is append-only per batch; chunks are never
	// mutated after being written.
	SaveChunks(chunks []*models.Chunk) error
	GetChunks(documentID string) ([]*models.Chunk, error)
	CountChunks(documentID string) (int, error)
	DeleteChunks(documentID string) error

	// SimilarChunks returns chunks at or above threshold ordered by
	// descending similarity, scoped to the owner.
	SimilarChunks(userID, documentID string, vector []float32, threshold float64, limit int) ([]*models.ChunkResult, error)

	// DocumentsDeletedBefore returns soft-deleted documents past the cutoff
	DocumentsDeletedBefore(cutoff time.Time, limit int) ([]*models.Document, error)
	PurgeDocument(id string) error
}

// MemoryStorage defines long-term memory persistence and search
type MemoryStorage interface {
	SaveMemory(mem *models.Memory) error
	GetMemory(id string) (*models.Memory, error)
	DeleteMemory(id string) error
	ListMemories(opts *ListOptions) ([]*models.Memory, error)
	ListMemoriesByCategory(userID, category string, limit int) ([]*models.Memory, error)

	// SimilarMemories is the vector-similarity primitive: results at or
	// above threshold, descending similarity, capped at limit.
	SimilarMemories(userID string, vector []float32, threshold float64, limit int) ([]*models.MemoryResult, error)

	// TextSearchMemories is the case-insensitive substring fallback over
	// title and body. An empty query returns no rows.
	TextSearchMemories(userID, query string, limit int) ([]*models.Memory, error)
}

// SessionStorage defines session and message persistence
type SessionStorage interface {
	SaveSession(session *models.Session) error
	GetSession(id string) (*models.Session, error)
	SoftDeleteSession(id string) error
	ListActiveSessions(userID string) ([]*models.Session, error)

	AppendMessage(msg *models.Message) error
	GetMessages(sessionID string, limit int) ([]*models.Message, error)

	SimilarMessages(userID, sessionID string, vector []float32, threshold float64, limit int) ([]*models.MessageResult, error)
	TextSearchMessages(userID, sessionID, query string, limit int) ([]*models.Message, error)

	// SessionsDeletedBefore returns soft-deleted sessions past the cutoff
	SessionsDeletedBefore(cutoff time.Time, limit int) ([]*models.Session, error)
	PurgeSession(id string) error
}

// ContextStorage defines versioned short-term context persistence
type ContextStorage interface {
	SaveContext(ctx *models.ShortTermContext) error
	// GetCurrentContext returns the highest-version context for the
	// session, or nil when none exists.
	GetCurrentContext(userID, sessionID string) (*models.ShortTermContext, error)
	GetContextHistory(userID, sessionID string) ([]*models.ShortTermContext, error)
	DeleteContextsForSession(sessionID string) error
	TouchContext(id string, accessedAt time.Time) error
}

// BlobStorage stores raw uploaded bytes, durable and immediately
// consistent after upload.
type BlobStorage interface {
	Upload(key string, data []byte) error
	Download(key string) ([]byte, error)
	Delete(key string) error
}

// StorageManager aggregates all storage interfaces behind one lifecycle
type StorageManager interface {
	Documents() DocumentStorage
	Memories() MemoryStorage
	Sessions() SessionStorage
	Contexts() ContextStorage
	Blobs() BlobStorage
	Close() error
}
