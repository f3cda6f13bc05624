package models

import (
	"fmt"
	"time"
)

// DocumentStatus represents the processing state of a document
type DocumentStatus string

const (
	// StatusPending indicates the document is uploaded but not yet processed
	StatusPending DocumentStatus = "pending"
	// StatusProcessing indicates an ingestion run is in progress
	StatusProcessing DocumentStatus = "processing"
	// StatusCompleted indicates all chunks are persisted and the chunk count is authoritative
	StatusCompleted DocumentStatus = "completed"
	// StatusFailed indicates the ingestion run failed; LastError carries the reason
	StatusFailed DocumentStatus = "failed"
)

// CanTransitionTo reports whether moving to the next status is a legal
// transition. Completed and failed are terminal; no transition skips
// processing.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Transition validates and returns the next status, or an error for an
// illegal transition. All status writes go through this single function.
func (s DocumentStatus) Transition(next DocumentStatus) (DocumentStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("illegal document status transition: %s -> %s", s, next)
	}
	return next, nil
}

// Document represents an uploaded file tracked through the ingestion pipeline
type Document struct {
	// Identity
	ID     string `json:"id"`      // doc_{uuid}
	UserID string `json:"user_id"` // Owning user

	// Upload metadata
	FileName   string `json:"file_name"`
	MediaType  string `json:"media_type"` // Declared MIME type
	SizeBytes  int64  `json:"size_bytes"`
	StorageKey string `json:"storage_key"` // Blob store locator for the raw bytes
	SourceURL  string `json:"source_url,omitempty"` // Publicly reachable URL (required for image vision)
	Inline     bool   `json:"inline"`               // Inline chat upload; uses the reduced chunk budget

	// Processing state
	Status     DocumentStatus `json:"status"`
	ChunkCount int            `json:"chunk_count"` // Authoritative only when Status is completed
	LastError  string         `json:"last_error,omitempty"`

	// Soft deletion (physically purged by the retention job)
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Timestamps
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// Chunk is a bounded slice of extracted document text with its own
// embedding. Chunks are immutable once written; reprocessing creates a
// new set and supersedes the old one.
type Chunk struct {
	ID         string `json:"id"` // chk_{uuid}
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"` // Denormalized owner for scoped search

	Ordinal       int    `json:"ordinal"`        // Contiguous from 0 per document, global across pages
	Page          int    `json:"page,omitempty"` // 1-based page number; unpaginated sources are page 1
	Content       string `json:"content"`
	TokenEstimate int    `json:"token_estimate"`

	Embedding []float32 `json:"embedding"`
	Degraded  bool      `json:"degraded"` // Embedding call failed; vector is the zero placeholder

	CreatedAt time.Time `json:"created_at"`
}
