package interfaces

import (
	"context"
	"time"
)

// EventType categorizes events published by the ingestion pipeline
type EventType string

const (
	// EventDocumentProcessing fires when a document enters processing
	EventDocumentProcessing EventType = "document_processing"
	// EventDocumentProgress fires after each persisted chunk batch
	EventDocumentProgress EventType = "document_progress"
	// EventDocumentCompleted fires when ingestion completes
	EventDocumentCompleted EventType = "document_completed"
	// EventDocumentFailed fires when ingestion fails
	EventDocumentFailed EventType = "document_failed"
)

// Event is a structured progress/failure notification
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes a published event
type EventHandler func(ctx context.Context, event Event) error

// EventService implements pub/sub for pipeline events
type EventService interface {
	Subscribe(eventType EventType, handler EventHandler) error
	Publish(ctx context.Context, event Event) error
	PublishSync(ctx context.Context, event Event) error
}
