package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// BlockSummaries loads every block record in height order. Called once at
// open; the result backs all random access and segmentation.
func (s *Store) BlockSummaries() ([]model.Block, error) {
	var blocks []model.Block
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixBlock}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			height, err := parseBlockKey(item.Key())
			if err != nil {
				return fmt.Errorf("%v: %w", err, model.ErrDataset)
			}
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			block, err := DecodeBlockRecord(height, data)
			if err != nil {
				return fmt.Errorf("block %d: %w", height, err)
			}
			if int(height) != len(blocks) {
				return fmt.Errorf("block heights not dense at %d: %w", height, model.ErrDataset)
			}
			blocks = append(blocks, block)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// HeightByBlockHash resolves a block hash to its height.
func (s *Store) HeightByBlockHash(hash []byte) (uint32, error) {
	data, err := s.get(BlockHashKey(hash))
	if err != nil {
		return 0, fmt.Errorf("block hash %x: %w", hash, err)
	}
	if len(data) != heightSize {
		return 0, fmt.Errorf("block hash row is %d bytes, want %d: %w", len(data), heightSize, model.ErrDataset)
	}
	return binary.BigEndian.Uint32(data), nil
}
