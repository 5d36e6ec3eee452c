package chaindb

import (
	"iter"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// UnspentOutput locates an unspent output within the chain.
type UnspentOutput struct {
	Tx     uint64
	TxHash string
	Height int
	Index  uint32
	Output model.Output
}

// OutputsUnspent lazily yields every output across the whole chain with no
// recorded spending input, in chain order. The sequence streams over the
// chain store rather than materializing the output set; stop consuming to
// stop the scan. Restartable: each range starts a fresh scan.
func (b *Blockchain) OutputsUnspent() iter.Seq2[UnspentOutput, error] {
	return func(yield func(UnspentOutput, error) bool) {
		for tx, err := range b.chain.AllTransactions() {
			if err != nil {
				yield(UnspentOutput{}, err)
				return
			}
			for i, out := range tx.Outputs {
				if out.Spent() {
					continue
				}
				u := UnspentOutput{
					Tx:     tx.Index,
					TxHash: tx.Hash.String(),
					Height: tx.Height,
					Index:  uint32(i),
					Output: out,
				}
				if !yield(u, nil) {
					return
				}
			}
		}
	}
}
