package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (ingestion progress events)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Documents
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.CreateHandler)   // POST - upload
	mux.HandleFunc("/api/documents/", s.app.DocumentHandler.DocumentRoutes) // GET/DELETE /{id}, POST /{id}/process

	// API routes - Search
	mux.HandleFunc("/api/search", s.app.SearchHandler.SearchHandler) // POST

	// API routes - Short-term context and messages
	mux.HandleFunc("/api/context", s.app.ContextHandler.ContextRoutes)         // GET, PUT
	mux.HandleFunc("/api/messages", s.app.ContextHandler.AppendMessageHandler) // POST

	// API routes - Sessions
	mux.HandleFunc("/api/sessions", s.app.SessionHandler.ListHandler)    // GET
	mux.HandleFunc("/api/sessions/", s.app.SessionHandler.DeleteHandler) // DELETE /{id}

	// API routes - Memories
	mux.HandleFunc("/api/memories", s.app.MemoryHandler.CollectionRoutes) // GET (list), POST (create)
	mux.HandleFunc("/api/memories/", s.app.MemoryHandler.MemoryRoutes)    // GET/PUT/DELETE /{id}

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	return mux
}
