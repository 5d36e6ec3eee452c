package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// Version returns the dataset format version.
func (s *Store) Version() (uint32, error) {
	data, err := s.get(keyMetaVersion)
	if err != nil {
		return 0, fmt.Errorf("dataset version: %v: %w", err, model.ErrDataset)
	}
	if len(data) != 4 {
		return 0, fmt.Errorf("dataset version is %d bytes, want 4: %w", len(data), model.ErrDataset)
	}
	return binary.BigEndian.Uint32(data), nil
}

// BlockCount returns the number of blocks in the dataset, before any
// tip-trimming applied by the facade.
func (s *Store) BlockCount() (uint64, error) {
	return s.metaUint64(keyMetaBlockCount, "block count")
}

// TxCount returns the number of transactions in the dataset.
func (s *Store) TxCount() (uint64, error) {
	return s.metaUint64(keyMetaTxCount, "transaction count")
}

// ReorgDetected reports whether the builder marked the dataset as invalidated
// by a chain reorganization.
func (s *Store) ReorgDetected() (bool, error) {
	ok, err := s.has(keyMetaReorg)
	if err != nil {
		return false, fmt.Errorf("reorg marker: %v: %w", err, model.ErrDataset)
	}
	return ok, nil
}

// AddressCount returns the number of assigned ids of the given type. Ids are
// dense, so this is also one past the largest valid id.
func (s *Store) AddressCount(t model.AddressType) (uint64, error) {
	count, err := s.metaUint64(AddrCountKey(uint8(t)), "address count")
	if errors.Is(err, model.ErrDataset) && errors.Is(err, model.ErrNotFound) {
		return 0, nil
	}
	return count, err
}

func (s *Store) metaUint64(key []byte, what string) (uint64, error) {
	data, err := s.get(key)
	if err != nil {
		return 0, fmt.Errorf("dataset %s: %w: %w", what, err, model.ErrDataset)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("dataset %s is %d bytes, want 8: %w", what, len(data), model.ErrDataset)
	}
	return binary.BigEndian.Uint64(data), nil
}
