package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// FormatVersion is the dataset layout version this engine reads.
const FormatVersion = 1

// Store is a read-only handle over the dataset. Safe for concurrent use; the
// underlying database never changes after Open.
type Store struct {
	db *badger.DB
}

// Open maps the dataset directory read-only. A missing or unreadable dataset
// reports model.ErrDataset. Not safe to call concurrently with readers.
func Open(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("dataset at %s: %v: %w", path, err, model.ErrDataset)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset at %s is not a directory: %w", path, model.ErrDataset)
	}

	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open dataset at %s: %v: %w", path, err, model.ErrDataset)
	}

	s := &Store{db: db}
	version, err := s.Version()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if version != FormatVersion {
		_ = db.Close()
		return nil, fmt.Errorf("dataset format version %d, engine reads %d: %w", version, FormatVersion, model.ErrDataset)
	}
	return s, nil
}

// Close releases the mapping. Lazy sequences derived from the store must not
// be consumed afterwards.
func (s *Store) Close() error {
	return s.db.Close()
}

// get copies the value at key, translating a missing key to model.ErrNotFound.
func (s *Store) get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return model.ErrNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

// has reports whether key is present.
func (s *Store) has(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
