package badger

import (
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/memoria/internal/interfaces"
)

const blobKeyPrefix = "blob:"

// BlobStorage stores raw uploaded bytes using the underlying Badger
// transaction API directly. Blobs bypass badgerhold encoding since they
// are opaque byte payloads, not queryable records.
type BlobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewBlobStorage creates a new BlobStorage instance
func NewBlobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.BlobStorage {
	return &BlobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *BlobStorage) Upload(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("blob key is required")
	}
	if len(data) == 0 {
		return fmt.Errorf("blob data is empty")
	}

	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(blobKeyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", key, err)
	}

	s.logger.Debug().
		Str("key", key).
		Int("size_bytes", len(data)).
		Msg("Blob uploaded")

	return nil
}

func (s *BlobStorage) Download(key string) ([]byte, error) {
	var data []byte
	err := s.db.Store().Badger().View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(blobKeyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err == badgerdb.ErrKeyNotFound {
			return nil, fmt.Errorf("blob not found: %s", key)
		}
		return nil, fmt.Errorf("failed to download blob %s: %w", key, err)
	}
	return data, nil
}

func (s *BlobStorage) Delete(key string) error {
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(blobKeyPrefix + key))
	})
	if err != nil && err != badgerdb.ErrKeyNotFound {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}
