package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// ContextHandler exposes the versioned short-term context and message
// append operations
type ContextHandler struct {
	contextService interfaces.ContextService
	logger         arbor.ILogger
}

// NewContextHandler creates a new context handler
func NewContextHandler(contextService interfaces.ContextService, logger arbor.ILogger) *ContextHandler {
	return &ContextHandler{
		contextService: contextService,
		logger:         logger,
	}
}

// ContextRoutes dispatches GET and PUT on /api/context
func (h *ContextHandler) ContextRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getContext(w, r)
	case http.MethodPut:
		h.upsertContext(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// getContext handles GET /api/context?session_id=...
func (h *ContextHandler) getContext(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		WriteError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	bundle, err := h.contextService.GetContext(r.Context(), userID, sessionID)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, bundle)
}

// upsertContext handles PUT /api/context
func (h *ContextHandler) upsertContext(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req interfaces.UpsertContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID

	stc, err := h.contextService.UpsertContext(r.Context(), &req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, stc)
}

type appendMessageRequest struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// AppendMessageHandler handles POST /api/messages
func (h *ContextHandler) AppendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.contextService.AppendMessage(r.Context(), userID, req.SessionID, req.Role, req.Content)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, msg)
}
