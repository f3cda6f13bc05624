package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// maxUploadBytes caps multipart uploads at 32 MB
const maxUploadBytes = 32 << 20

// DocumentHandler exposes document upload, processing and polling
type DocumentHandler struct {
	ingestionService interfaces.IngestionService
	logger           arbor.ILogger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ingestionService interfaces.IngestionService, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		ingestionService: ingestionService,
		logger:           logger,
	}
}

// CreateHandler handles POST /api/documents. The payload arrives as
// multipart form data with a "file" part.
func (h *DocumentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	mediaType := r.FormValue("media_type")
	if mediaType == "" {
		mediaType = header.Header.Get("Content-Type")
	}

	req := &interfaces.CreateDocumentRequest{
		UserID:    userID,
		FileName:  header.Filename,
		MediaType: mediaType,
		SourceURL: r.FormValue("source_url"),
		Inline:    r.FormValue("inline") == "true",
		Data:      data,
	}

	doc, err := h.ingestionService.CreateDocument(r.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if !strings.Contains(err.Error(), "unsupported media type") && !strings.Contains(err.Error(), "invalid") {
			status = http.StatusInternalServerError
		}
		WriteError(w, status, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, doc)
}

// ProcessHandler handles POST /api/documents/{id}/process. Processing
// runs in the background; the client polls GET /api/documents/{id} or
// subscribes to the websocket for progress.
func (h *DocumentHandler) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	documentID := PathSuffix(r, "/api/documents/")
	if documentID == "" {
		WriteError(w, http.StatusBadRequest, "document id is required")
		return
	}

	// Verify existence and ownership before detaching
	if _, err := h.ingestionService.GetDocument(r.Context(), documentID, userID); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if err := h.ingestionService.ProcessDocument(ctx, documentID, userID); err != nil {
			h.logger.Warn().
				Err(err).
				Str("doc_id", documentID).
				Msg("Background document processing failed")
		}
	}()

	WriteStarted(w, fmt.Sprintf("processing started for %s", documentID))
}

// GetHandler handles GET /api/documents/{id} for status polling
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	documentID := PathSuffix(r, "/api/documents/")
	if documentID == "" {
		WriteError(w, http.StatusBadRequest, "document id is required")
		return
	}

	doc, err := h.ingestionService.GetDocument(r.Context(), documentID, userID)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

// DeleteHandler handles DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	documentID := PathSuffix(r, "/api/documents/")
	if documentID == "" {
		WriteError(w, http.StatusBadRequest, "document id is required")
		return
	}

	if err := h.ingestionService.DeleteDocument(r.Context(), documentID, userID); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteSuccess(w, fmt.Sprintf("document %s deleted", documentID))
}

// DocumentRoutes dispatches /api/documents/{id} and
// /api/documents/{id}/process by method and sub-path
func (h *DocumentHandler) DocumentRoutes(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/process") {
		h.ProcessHandler(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.GetHandler(w, r)
	case http.MethodDelete:
		h.DeleteHandler(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
