// -----------------------------------------------------------------------
// Retention Service - Scheduled purge of soft-deleted rows
// Purges are batched and idempotent; nothing else depends on them
// -----------------------------------------------------------------------

package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// Service implements RetentionService
type Service struct {
	storage interfaces.StorageManager
	config  *common.Config
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	logger  arbor.ILogger
}

// NewService creates the retention service
func NewService(storage interfaces.StorageManager, config *common.Config, logger arbor.ILogger) interfaces.RetentionService {
	return &Service{
		storage: storage,
		config:  config,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start schedules the purge job with the configured cron expression
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("retention service already started")
	}

	schedule := s.config.Retention.Schedule
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled retention run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Int("grace_days", s.config.Retention.GraceDays).
		Msg("Retention service started")

	return nil
}

// Stop halts the scheduler. A purge already in flight finishes.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Retention service stopped")
}

// RunOnce purges one batch of soft-deleted sessions and documents past
// the grace window. Rerunning is safe: already-purged rows simply no
// longer match.
func (s *Service) RunOnce(ctx context.Context) (*interfaces.PurgeStats, error) {
	cutoff := time.Now().Add(-s.config.Retention.GraceWindow())
	batch := s.config.Retention.PurgeBatch
	if batch <= 0 {
		batch = 500
	}

	stats := &interfaces.PurgeStats{}

	if err := s.purgeSessions(ctx, cutoff, batch, stats); err != nil {
		return stats, err
	}
	if err := s.purgeDocuments(ctx, cutoff, batch, stats); err != nil {
		return stats, err
	}

	s.logger.Info().
		Int("sessions_purged", stats.SessionsPurged).
		Int("documents_purged", stats.DocumentsPurged).
		Int("chunks_purged", stats.ChunksPurged).
		Int("contexts_purged", stats.ContextsPurged).
		Int("messages_purged", stats.MessagesPurged).
		Msg("Retention run completed")

	return stats, nil
}

// purgeSessions removes expired sessions with their messages and
// context versions.
func (s *Service) purgeSessions(ctx context.Context, cutoff time.Time, batch int, stats *interfaces.PurgeStats) error {
	sessions, err := s.storage.Sessions().SessionsDeletedBefore(cutoff, batch)
	if err != nil {
		return fmt.Errorf("failed to list expired sessions: %w", err)
	}

	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return err
		}

		messages, err := s.storage.Sessions().GetMessages(session.ID, 0)
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to count session messages")
		}

		contexts, err := s.storage.Contexts().GetContextHistory(session.UserID, session.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to count session contexts")
		}

		if err := s.storage.Contexts().DeleteContextsForSession(session.ID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to purge session contexts")
			continue
		}

		if err := s.storage.Sessions().PurgeSession(session.ID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to purge session")
			continue
		}

		stats.SessionsPurged++
		stats.MessagesPurged += len(messages)
		stats.ContextsPurged += len(contexts)
	}

	return nil
}

// purgeDocuments removes expired documents with their chunks and blobs
func (s *Service) purgeDocuments(ctx context.Context, cutoff time.Time, batch int, stats *interfaces.PurgeStats) error {
	docs, err := s.storage.Documents().DocumentsDeletedBefore(cutoff, batch)
	if err != nil {
		return fmt.Errorf("failed to list expired documents: %w", err)
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunkCount, err := s.storage.Documents().CountChunks(doc.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("doc_id", doc.ID).Msg("Failed to count document chunks")
		}

		if err := s.storage.Documents().DeleteChunks(doc.ID); err != nil {
			s.logger.Warn().Err(err).Str("doc_id", doc.ID).Msg("Failed to purge document chunks")
			continue
		}

		if doc.StorageKey != "" {
			if err := s.storage.Blobs().Delete(doc.StorageKey); err != nil {
				s.logger.Warn().Err(err).Str("doc_id", doc.ID).Msg("Failed to delete document blob")
			}
		}

		if err := s.storage.Documents().PurgeDocument(doc.ID); err != nil {
			s.logger.Warn().Err(err).Str("doc_id", doc.ID).Msg("Failed to purge document")
			continue
		}

		stats.DocumentsPurged++
		stats.ChunksPurged += chunkCount
	}

	return nil
}
