package interfaces

import (
	"context"
)

// PurgeStats reports what one retention run removed
type PurgeStats struct {
	SessionsPurged  int `json:"sessions_purged"`
	DocumentsPurged int `json:"documents_purged"`
	ChunksPurged    int `json:"chunks_purged"`
	ContextsPurged  int `json:"contexts_purged"`
	MessagesPurged  int `json:"messages_purged"`
}

// RetentionService periodically purges soft-deleted rows past the grace
// window. Runs are idempotent and batched; the core never assumes a
// purge has happened before reading soft-deleted rows.
type RetentionService interface {
	Start() error
	Stop()
	RunOnce(ctx context.Context) (*PurgeStats, error)
}
