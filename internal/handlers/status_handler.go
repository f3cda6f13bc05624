package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// StatusHandler reports service health and version
type StatusHandler struct {
	embeddingService interfaces.EmbeddingService
	startedAt        time.Time
	logger           arbor.ILogger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(embeddingService interfaces.EmbeddingService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		embeddingService: embeddingService,
		startedAt:        time.Now(),
		logger:           logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	embeddingAvailable := h.embeddingService.IsAvailable(r.Context())

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "ok",
		"version":             common.GetFullVersion(),
		"uptime":              time.Since(h.startedAt).String(),
		"embedding_available": embeddingAvailable,
		"embedding_dimension": h.embeddingService.Dimension(),
	})
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}
