package handlers

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// SessionHandler exposes session listing and soft deletion
type SessionHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(storage interfaces.StorageManager, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListHandler handles GET /api/sessions; soft-deleted sessions are
// excluded
func (h *SessionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	sessions, err := h.storage.Sessions().ListActiveSessions(userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// DeleteHandler handles DELETE /api/sessions/{id}. The session's
// messages and contexts stay readable until the retention purge.
func (h *SessionHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	sessionID := PathSuffix(r, "/api/sessions/")
	if sessionID == "" {
		WriteError(w, http.StatusBadRequest, "session id is required")
		return
	}

	session, err := h.storage.Sessions().GetSession(sessionID)
	if err != nil || session.UserID != userID {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("session not found: %s", sessionID))
		return
	}

	if err := h.storage.Sessions().SoftDeleteSession(sessionID); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(w, fmt.Sprintf("session %s deleted", sessionID))
}
