// -----------------------------------------------------------------------
// Application wiring - constructs services in dependency order and
// tears them down in reverse
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/handlers"
	"github.com/ternarybob/memoria/internal/interfaces"
	"github.com/ternarybob/memoria/internal/services/chunker"
	"github.com/ternarybob/memoria/internal/services/contexts"
	"github.com/ternarybob/memoria/internal/services/embeddings"
	"github.com/ternarybob/memoria/internal/services/events"
	"github.com/ternarybob/memoria/internal/services/extract"
	"github.com/ternarybob/memoria/internal/services/ingest"
	"github.com/ternarybob/memoria/internal/services/llm"
	"github.com/ternarybob/memoria/internal/services/memories"
	"github.com/ternarybob/memoria/internal/services/retention"
	"github.com/ternarybob/memoria/internal/services/search"
	"github.com/ternarybob/memoria/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Core services
	LLMService       interfaces.LLMService
	EmbeddingService interfaces.EmbeddingService
	EventService     interfaces.EventService
	IngestionService interfaces.IngestionService
	RetrievalService interfaces.RetrievalService
	ContextService   interfaces.ContextService
	MemoryService    interfaces.MemoryService
	RetentionService interfaces.RetentionService

	// HTTP handlers
	DocumentHandler *handlers.DocumentHandler
	SearchHandler   *handlers.SearchHandler
	ContextHandler  *handlers.ContextHandler
	SessionHandler  *handlers.SessionHandler
	MemoryHandler   *handlers.MemoryHandler
	StatusHandler   *handlers.StatusHandler
	WSHandler       *handlers.WebSocketHandler
}

// New creates and wires the application
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storage, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storage

	llmRouter, err := llm.NewRouter(config, logger)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to initialize LLM providers: %w", err)
	}
	a.LLMService = llmRouter

	a.EmbeddingService = embeddings.NewService(a.LLMService, config, logger)
	a.EventService = events.NewService(logger)

	extractor := extract.NewService(a.LLMService, logger)
	chunkerService := chunker.NewService(logger)

	a.IngestionService = ingest.NewOrchestrator(
		a.StorageManager,
		extractor,
		chunkerService,
		a.EmbeddingService,
		a.EventService,
		config,
		logger,
	)
	a.RetrievalService = search.NewService(a.StorageManager, a.EmbeddingService, config, logger)
	a.ContextService = contexts.NewService(a.StorageManager, a.EmbeddingService, logger)
	a.MemoryService = memories.NewService(a.StorageManager, a.EmbeddingService, logger)
	a.RetentionService = retention.NewService(a.StorageManager, config, logger)

	if config.Retention.Enabled {
		if err := a.RetentionService.Start(); err != nil {
			storage.Close()
			return nil, fmt.Errorf("failed to start retention service: %w", err)
		}
	}

	a.DocumentHandler = handlers.NewDocumentHandler(a.IngestionService, logger)
	a.SearchHandler = handlers.NewSearchHandler(a.RetrievalService, logger)
	a.ContextHandler = handlers.NewContextHandler(a.ContextService, logger)
	a.SessionHandler = handlers.NewSessionHandler(a.StorageManager, logger)
	a.MemoryHandler = handlers.NewMemoryHandler(a.MemoryService, logger)
	a.StatusHandler = handlers.NewStatusHandler(a.EmbeddingService, logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, logger)

	logger.Info().Msg("Application initialized")

	return a, nil
}

// Close tears down components in reverse dependency order
func (a *App) Close() {
	if a.RetentionService != nil {
		a.RetentionService.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}

	a.Logger.Info().Msg("Application closed")
}
