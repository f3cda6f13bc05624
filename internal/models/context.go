package models

import (
	"time"
)

// ShortTermContext is a versioned rolling summary of one conversation
// session. Regeneration writes a new row with an incremented version;
// rows are never edited in place. For a (user, session) pair only the
// highest version is current; older versions remain as history until the
// retention job removes them.
type ShortTermContext struct {
	ID        string `json:"id"` // ctx_{uuid}
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`

	Version       int      `json:"version"` // Monotonically increasing per session
	Summary       string   `json:"summary"`
	KeyTopics     []string `json:"key_topics,omitempty"`
	MessageCount  int      `json:"message_count"`  // Messages covered by this summary
	ContextWeight float64  `json:"context_weight"` // [0,1] soft relevance knob for the caller

	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// ContextBundle is what a read returns: the current summary plus the raw
// ordered message window. The caller composes these into its own context
// window; this component does not decide token budgets.
type ContextBundle struct {
	Context  *ShortTermContext `json:"context,omitempty"`
	Messages []*Message        `json:"messages"`
}
