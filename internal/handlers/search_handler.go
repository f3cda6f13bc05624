package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/models"
)

// SearchHandler exposes scoped retrieval
type SearchHandler struct {
	retrievalService interfaces.RetrievalService
	logger           arbor.ILogger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(retrievalService interfaces.RetrievalService, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		retrievalService: retrievalService,
		logger:           logger,
	}
}

type searchRequest struct {
	SessionID  string    `json:"session_id,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Text       string    `json:"text,omitempty"`
	Vector     []float32 `json:"vector,omitempty"`
	Threshold  float64   `json:"threshold,omitempty"`
	Limit      int       `json:"limit,omitempty"`

	SearchMemories bool `json:"search_memories"`
	SearchMessages bool `json:"search_messages"`
	SearchChunks   bool `json:"search_chunks"`
}

// SearchHandler handles POST /api/search
func (h *SearchHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope := &models.SearchScope{
		UserID:     userID,
		SessionID:  req.SessionID,
		DocumentID: req.DocumentID,
	}
	query := &models.SearchQuery{
		Text:           req.Text,
		Vector:         req.Vector,
		Threshold:      req.Threshold,
		Limit:          req.Limit,
		SearchMemories: req.SearchMemories,
		SearchMessages: req.SearchMessages,
		SearchChunks:   req.SearchChunks,
	}

	results, err := h.retrievalService.Search(r.Context(), scope, query)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, results)
}
