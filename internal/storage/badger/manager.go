package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/common"
	"github.com/ternarybob/memoria/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	documents interfaces.DocumentStorage
	memories  interfaces.MemoryStorage
	sessions  interfaces.SessionStorage
	contexts  interfaces.ContextStorage
	blobs     interfaces.BlobStorage
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		documents: NewDocumentStorage(db, logger),
		memories:  NewMemoryStorage(db, logger),
		sessions:  NewSessionStorage(db, logger),
		contexts:  NewContextStorage(db, logger),
		blobs:     NewBlobStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// Documents returns the Document storage interface
func (m *Manager) Documents() interfaces.DocumentStorage {
	return m.documents
}

// Memories returns the Memory storage interface
func (m *Manager) Memories() interfaces.MemoryStorage {
	return m.memories
}

// Sessions returns the Session storage interface
func (m *Manager) Sessions() interfaces.SessionStorage {
	return m.sessions
}

// Contexts returns the Context storage interface
func (m *Manager) Contexts() interfaces.ContextStorage {
	return m.contexts
}

// Blobs returns the Blob storage interface
func (m *Manager) Blobs() interfaces.BlobStorage {
	return m.blobs
}

// Close closes the underlying database
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing Badger storage manager")
	return m.db.Close()
}
