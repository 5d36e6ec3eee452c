// Package index exposes the reverse lookups of the dataset: hash to dense
// position and address resolution by id, string and prefix. Both indexes are
// built by the external ingestion pipeline; this package only reads them.
package index

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/internal/chaindb/storage"
)

// HashIndex maps block and transaction hashes to their dense chain
// positions. Positions at or beyond the visible limits (tip blocks excluded
// by configuration) are reported as absent.
type HashIndex struct {
	store      *storage.Store
	blockLimit uint32
	txLimit    uint64
}

// NewHashIndex builds a hash index view limited to the visible chain.
func NewHashIndex(store *storage.Store, blockLimit uint32, txLimit uint64) *HashIndex {
	return &HashIndex{store: store, blockLimit: blockLimit, txLimit: txLimit}
}

// TxPosition resolves a transaction hash to its global index. Reports
// model.ErrNotFound when the hash is absent or resolves past the visible tip.
func (h *HashIndex) TxPosition(hash chainhash.Hash) (uint64, error) {
	index, err := h.store.TxIndexByHash(hash[:])
	if err != nil {
		return 0, err
	}
	if index >= h.txLimit {
		return 0, fmt.Errorf("transaction %s is beyond the visible tip: %w", hash, model.ErrNotFound)
	}
	return index, nil
}

// BlockPosition resolves a block hash to its height. Reports
// model.ErrNotFound when the hash is absent or resolves past the visible tip.
func (h *HashIndex) BlockPosition(hash chainhash.Hash) (int, error) {
	height, err := h.store.HeightByBlockHash(hash[:])
	if err != nil {
		return 0, err
	}
	if height >= h.blockLimit {
		return 0, fmt.Errorf("block %s is beyond the visible tip: %w", hash, model.ErrNotFound)
	}
	return int(height), nil
}
