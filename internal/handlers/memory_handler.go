package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// MemoryHandler exposes long-term memory CRUD
type MemoryHandler struct {
	memoryService interfaces.MemoryService
	logger        arbor.ILogger
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(memoryService interfaces.MemoryService, logger arbor.ILogger) *MemoryHandler {
	return &MemoryHandler{
		memoryService: memoryService,
		logger:        logger,
	}
}

// CollectionRoutes dispatches GET (list) and POST (create) on /api/memories
func (h *MemoryHandler) CollectionRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// MemoryRoutes dispatches GET/PUT/DELETE on /api/memories/{id}
func (h *MemoryHandler) MemoryRoutes(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	memoryID := PathSuffix(r, "/api/memories/")
	if memoryID == "" {
		WriteError(w, http.StatusBadRequest, "memory id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		mem, err := h.memoryService.GetMemory(r.Context(), memoryID, userID)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, mem)

	case http.MethodPut:
		var req interfaces.UpdateMemoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.UserID = userID

		mem, err := h.memoryService.UpdateMemory(r.Context(), memoryID, &req)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, mem)

	case http.MethodDelete:
		if err := h.memoryService.DeleteMemory(r.Context(), memoryID, userID); err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteSuccess(w, fmt.Sprintf("memory %s deleted", memoryID))

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *MemoryHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	memories, err := h.memoryService.ListMemories(
		r.Context(),
		userID,
		r.URL.Query().Get("category"),
		QueryInt(r, "limit", 0),
		QueryInt(r, "offset", 0),
	)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"memories": memories,
		"count":    len(memories),
	})
}

func (h *MemoryHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var req interfaces.CreateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID

	mem, err := h.memoryService.CreateMemory(r.Context(), &req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, mem)
}
