// Package model defines the value types and error taxonomy of the chain
// analysis engine. Everything here is immutable snapshot data read from a
// dataset produced by the external builder.
package model

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Address identifies a script by its type tag and dense per-type id.
type Address struct {
	Type AddressType
	Num  uint32
}

// Block is a summary row of the chain: heights are dense and zero-based,
// FirstTxIndex is the global index of the block's first transaction.
type Block struct {
	Height       int
	Hash         chainhash.Hash
	Time         time.Time
	FirstTxIndex uint64
	TxCount      uint32
}

// Transaction carries the fully decoded inputs and outputs of one
// transaction. Index is the dense global position within the chain.
type Transaction struct {
	Index   uint64
	Hash    chainhash.Hash
	Height  int
	Inputs  []Input
	Outputs []Output
}

// Input references the output it spends. Coinbase inputs reference nothing.
type Input struct {
	PrevTx   uint64
	PrevOut  uint32
	Coinbase bool
}

// OutputRef locates an input within a transaction, used as the spent-by
// back-reference on outputs.
type OutputRef struct {
	Tx    uint64
	Input uint32
}

// Output is a value locked to an address. SpentBy is nil while the output is
// unspent at the dataset snapshot.
type Output struct {
	Value   int64
	Address Address
	SpentBy *OutputRef
}

// Spent reports whether the output has a recorded spending input.
func (o Output) Spent() bool {
	return o.SpentBy != nil
}
