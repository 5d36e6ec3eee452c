package chaindb

import (
	"fmt"
	"iter"

	"github.com/btcsuite/btcd/chaincfg"
	"go.uber.org/zap"

	"github.com/gyoonit/blocksci/internal/chaindb/chainstore"
	"github.com/gyoonit/blocksci/internal/chaindb/index"
	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/internal/chaindb/storage"
)

// Blockchain is an immutable handle over one dataset snapshot. Open it once,
// share it across readers, Close it when done; no operation mutates the
// dataset. Lazy sequences derived from the handle read through its storage
// mapping and must not be consumed after Close.
type Blockchain struct {
	cfg    DataConfiguration
	params *chaincfg.Params

	store  *storage.Store
	chain  *chainstore.Store
	hashes *index.HashIndex
	addrs  *index.AddressIndex
}

// Open maps the dataset described by cfg. Fails with model.ErrDataset when
// the dataset is missing, malformed, or was invalidated by a reorg while
// cfg.ErrorOnReorg is set. Not safe to call concurrently with readers of the
// returned handle.
func Open(cfg DataConfiguration, params *chaincfg.Params, log *zap.Logger) (*Blockchain, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if params == nil {
		params = &chaincfg.MainNetParams
	}
	if cfg.BlocksIgnored < 0 {
		return nil, fmt.Errorf("blocks ignored %d: %w", cfg.BlocksIgnored, model.ErrInvalidArgument)
	}

	store, err := storage.Open(cfg.DataDirectory)
	if err != nil {
		return nil, err
	}

	if cfg.ErrorOnReorg {
		reorged, err := store.ReorgDetected()
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		if reorged {
			_ = store.Close()
			return nil, fmt.Errorf("dataset at %s was invalidated by a chain reorganization: %w", cfg.DataDirectory, model.ErrDataset)
		}
	}

	blocks, err := store.BlockSummaries()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	declared, err := store.BlockCount()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if uint64(len(blocks)) != declared {
		_ = store.Close()
		return nil, fmt.Errorf("dataset declares %d blocks but stores %d: %w", declared, len(blocks), model.ErrDataset)
	}

	visible := len(blocks) - cfg.BlocksIgnored
	if visible < 0 {
		visible = 0
	}
	blocks = blocks[:visible]

	chain := chainstore.New(store, blocks)
	log.Info("dataset opened",
		zap.String("directory", cfg.DataDirectory),
		zap.Int("blocks", chain.BlockCount()),
		zap.Uint64("transactions", chain.TxCount()),
		zap.Int("blocks_ignored", cfg.BlocksIgnored),
	)

	return &Blockchain{
		cfg:    cfg,
		params: params,
		store:  store,
		chain:  chain,
		hashes: index.NewHashIndex(store, uint32(visible), chain.TxCount()),
		addrs:  index.NewAddressIndex(store, params, chain.TxCount()),
	}, nil
}

// Close releases the dataset mapping. The dataset itself is never modified.
func (b *Blockchain) Close() error {
	return b.store.Close()
}

// Config returns the configuration the handle was opened with.
func (b *Blockchain) Config() DataConfiguration {
	return b.cfg
}

// Params returns the chain parameters used for address encoding.
func (b *Blockchain) Params() *chaincfg.Params {
	return b.params
}

// BlockCount returns the number of visible blocks.
func (b *Blockchain) BlockCount() int {
	return b.chain.BlockCount()
}

// TxCount returns the number of visible transactions.
func (b *Blockchain) TxCount() uint64 {
	return b.chain.TxCount()
}

// Block returns the block at height i with negative wraparound.
func (b *Blockchain) Block(i int) (model.Block, error) {
	return b.chain.Block(i)
}

// Slice returns the blocks selected by a [start, stop) range and stride.
func (b *Blockchain) Slice(start, stop, step int) ([]model.Block, error) {
	return b.chain.Slice(start, stop, step)
}

// Blocks lazily yields every visible block in height order.
func (b *Blockchain) Blocks() iter.Seq[model.Block] {
	return b.chain.Blocks()
}

// BlockTransactions lazily yields the transactions of one block.
func (b *Blockchain) BlockTransactions(blk model.Block) iter.Seq2[model.Transaction, error] {
	return b.chain.Transactions(blk)
}
