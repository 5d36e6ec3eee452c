// Package chainstore provides height-indexed random access over the ordered
// block sequence, with negative-index wraparound and slice semantics
// matching slice-of-sequence conventions.
package chainstore

import (
	"fmt"
	"iter"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/internal/chaindb/storage"
)

// Store is the visible chain: the block summary table resides in memory,
// transactions are read lazily from the dataset. Immutable after New.
type Store struct {
	store  *storage.Store
	blocks []model.Block
	txs    uint64
}

// New builds a chain store over the given visible blocks. The slice must be
// height-ordered and dense from zero; the facade trims tip blocks before
// constructing the store.
func New(store *storage.Store, blocks []model.Block) *Store {
	var txs uint64
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		txs = last.FirstTxIndex + uint64(last.TxCount)
	}
	return &Store{store: store, blocks: blocks, txs: txs}
}

// BlockCount returns the number of visible blocks.
func (s *Store) BlockCount() int {
	return len(s.blocks)
}

// TxCount returns the number of visible transactions.
func (s *Store) TxCount() uint64 {
	return s.txs
}

// Block returns the block at height i. Negative heights wrap around from the
// tip; indexes still outside [0, count) after wraparound report
// model.ErrOutOfRange.
func (s *Store) Block(i int) (model.Block, error) {
	resolved := i
	if resolved < 0 {
		resolved += len(s.blocks)
	}
	if resolved < 0 || resolved >= len(s.blocks) {
		return model.Block{}, fmt.Errorf("height %d with %d blocks: %w", i, len(s.blocks), model.ErrOutOfRange)
	}
	return s.blocks[resolved], nil
}

// Slice returns the blocks at start, start+step, ... strictly below stop,
// clamped to the valid range exactly as a sequence slice would. Empty and
// inverted ranges yield an empty result; a non-positive step reports
// model.ErrInvalidArgument.
func (s *Store) Slice(start, stop, step int) ([]model.Block, error) {
	if step <= 0 {
		return nil, fmt.Errorf("slice step %d: %w", step, model.ErrInvalidArgument)
	}
	size := len(s.blocks)
	start = clampIndex(start, size)
	stop = clampIndex(stop, size)

	var out []model.Block
	for i := start; i < stop; i += step {
		out = append(out, s.blocks[i])
	}
	return out, nil
}

// clampIndex applies negative wraparound and clamps to [0, size], the bound
// rules of sequence slicing.
func clampIndex(i, size int) int {
	if i < 0 {
		i += size
		if i < 0 {
			return 0
		}
	}
	if i > size {
		return size
	}
	return i
}

// Blocks lazily yields every visible block in height order. Restartable:
// each range starts over from height zero.
func (s *Store) Blocks() iter.Seq[model.Block] {
	return func(yield func(model.Block) bool) {
		for _, b := range s.blocks {
			if !yield(b) {
				return
			}
		}
	}
}

// BlockRange lazily yields the blocks with heights in [start, stop), already
// clamped by the caller.
func (s *Store) BlockRange(start, stop int) iter.Seq[model.Block] {
	return func(yield func(model.Block) bool) {
		for i := start; i < stop && i < len(s.blocks); i++ {
			if !yield(s.blocks[i]) {
				return
			}
		}
	}
}

// Transactions lazily yields the decoded transactions of block b in
// chain order.
func (s *Store) Transactions(b model.Block) iter.Seq2[model.Transaction, error] {
	return s.store.Transactions(b.FirstTxIndex, b.FirstTxIndex+uint64(b.TxCount))
}

// AllTransactions lazily yields every visible transaction in chain order.
func (s *Store) AllTransactions() iter.Seq2[model.Transaction, error] {
	return s.store.Transactions(0, s.txs)
}

// TransactionsBefore returns the number of transactions in blocks below
// height h, the prefix sum used for load-balanced segmentation.
func (s *Store) TransactionsBefore(h int) uint64 {
	if h <= 0 || len(s.blocks) == 0 {
		return 0
	}
	if h >= len(s.blocks) {
		return s.txs
	}
	return s.blocks[h].FirstTxIndex
}
