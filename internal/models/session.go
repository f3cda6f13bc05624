package models

import (
	"time"
)

// Session represents a conversation session. Ownership of messages and
// short-term contexts is soft: soft-deleting a session hides it from
// active listings but leaves its children queryable until the retention
// job physically purges them.
type Session struct {
	ID     string `json:"id"` // ses_{uuid}
	UserID string `json:"user_id"`

	Active    bool       `json:"active"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDeleted reports whether the session is soft-deleted
func (s *Session) IsDeleted() bool {
	return s.DeletedAt != nil
}

// Message is a single conversation turn within a session
type Message struct {
	ID        string `json:"id"` // msg_{uuid}
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`

	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`

	Embedding []float32 `json:"embedding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
