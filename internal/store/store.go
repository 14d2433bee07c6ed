package store

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

const (
	keystorePrefix = "keystore/"
	persistentKey  = "session/persistent"

	minCache   = 16
	minHandles = 16
)

// ErrNotFound is returned when a key is absent
var ErrNotFound = errors.New("not found")

// Store is the wallet's key-value backend. User keys live under their own
// prefix so no handle can collide with the persistent session slot.
type Store struct {
	path string
	db   *leveldb.DB
	log  log.Logger
}

// Open opens (or creates) a LevelDB store at path
func Open(path string, cache, handles int) (*Store, error) {
	logger := log.New("database", path)

	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	logger.Info("Opening wallet database", "cache", cache, "handles", handles)

	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*leveldberrors.ErrCorrupted); corrupted {
		logger.Warn("Database corrupted, attempting recovery")
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{path: path, db: db, log: logger}, nil
}

// OpenMemory opens a store backed by memory only
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}
	return &Store{path: ":memory:", db: db, log: log.New("database", ":memory:")}, nil
}

// Get returns the value stored under key
func (s *Store) Get(key string) ([]byte, error) {
	value, err := s.db.Get([]byte(keystorePrefix+key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}

// Has reports whether key is present
func (s *Store) Has(key string) (bool, error) {
	ok, err := s.db.Has([]byte(keystorePrefix+key), nil)
	if err != nil {
		return false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return ok, nil
}

// Put writes value under key with a synced write
func (s *Store) Put(key string, value []byte) error {
	if err := s.db.Put([]byte(keystorePrefix+key), value, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// PutPersistent replaces the persistent session record
func (s *Store) PutPersistent(value []byte) error {
	if err := s.db.Put([]byte(persistentKey), value, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to write persistent session: %w", err)
	}
	return nil
}

// GetPersistent returns the persistent session record
func (s *Store) GetPersistent() ([]byte, error) {
	value, err := s.db.Get([]byte(persistentKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read persistent session: %w", err)
	}
	return value, nil
}

// RemovePersistent drops the persistent session record. Removing an absent record is not an error.
func (s *Store) RemovePersistent() error {
	if err := s.db.Delete([]byte(persistentKey), &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to remove persistent session: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	s.log.Info("Closing wallet database")
	return s.db.Close()
}
