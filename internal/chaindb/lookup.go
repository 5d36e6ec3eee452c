package chaindb

import (
	"fmt"
	"iter"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/internal/chaindb/script"
)

// TxWithIndex loads the transaction at a global index. Indexes past the
// visible tip report model.ErrNotFound: the caller asserted existence.
func (b *Blockchain) TxWithIndex(index uint64) (model.Transaction, error) {
	if index >= b.chain.TxCount() {
		return model.Transaction{}, fmt.Errorf("transaction index %d with %d transactions: %w", index, b.chain.TxCount(), model.ErrNotFound)
	}
	return b.store.TransactionByIndex(index)
}

// TxWithHash loads the transaction with the given hash via the hash index.
func (b *Blockchain) TxWithHash(hash chainhash.Hash) (model.Transaction, error) {
	index, err := b.hashes.TxPosition(hash)
	if err != nil {
		return model.Transaction{}, err
	}
	return b.store.TransactionByIndex(index)
}

// BlockWithHash returns the block with the given hash via the hash index.
func (b *Blockchain) BlockWithHash(hash chainhash.Hash) (model.Block, error) {
	height, err := b.hashes.BlockPosition(hash)
	if err != nil {
		return model.Block{}, err
	}
	return b.chain.Block(height)
}

// AddressFromIndex resolves an assigned (type, id) pair to its script.
func (b *Blockchain) AddressFromIndex(num uint32, t model.AddressType) (script.Variant, error) {
	return b.addrs.ResolveByIndex(num, t)
}

// AddressFromString resolves an encoded address string. Returns (nil, nil)
// for a well-formed address unknown to this dataset; model.ErrMalformedInput
// when the string fails to decode.
func (b *Blockchain) AddressFromString(encoded string) (*script.Variant, error) {
	return b.addrs.ResolveByString(encoded)
}

// AddressesWithPrefix returns every dataset address beginning with prefix,
// ascending by encoded string.
func (b *Blockchain) AddressesWithPrefix(prefix string) ([]script.Variant, error) {
	return b.addrs.ResolveByPrefix(prefix)
}

// AddressesOfType lazily yields every assigned script of a type, ascending by
// numeric id.
func (b *Blockchain) AddressesOfType(t model.AddressType) iter.Seq2[script.Variant, error] {
	return b.addrs.AddressesOfType(t)
}

// AddressCount returns an upper bound on the number of distinct addresses of
// a type: the count of ids the builder assigned.
func (b *Blockchain) AddressCount(t model.AddressType) (uint64, error) {
	return b.addrs.AddressCount(t)
}

// AddressTypeTxs lazily yields every transaction with at least one output of
// the given address type, in chain order.
func (b *Blockchain) AddressTypeTxs(t model.AddressType) iter.Seq2[model.Transaction, error] {
	return b.addrs.TransactionsWithOutputType(t)
}

// ScriptOf resolves the script behind an output's address reference.
func (b *Blockchain) ScriptOf(addr model.Address) (script.Variant, error) {
	return b.addrs.ResolveByIndex(addr.Num, addr.Type)
}
