// Package datasettest writes miniature datasets in the on-disk layout the
// engine reads. It stands in for the external ingestion pipeline in tests
// and is never linked into production binaries.
package datasettest

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dgraph-io/badger/v4"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/internal/chaindb/script"
	"github.com/gyoonit/blocksci/internal/chaindb/storage"
)

// Output is a value locked to a script in a fixture transaction.
type Output struct {
	Value  int64
	Script script.Variant
}

// Input spends a prior output, referenced by global tx index and position.
type Input struct {
	PrevTx  uint64
	PrevOut uint32
}

// Tx is one fixture transaction. A tx with no inputs is written as coinbase.
type Tx struct {
	Inputs  []Input
	Outputs []Output
}

// Block is one fixture block.
type Block struct {
	Time time.Time
	Txs  []Tx
}

// Chain is a whole fixture dataset. Reorged writes the builder's
// reorg-invalidation marker.
type Chain struct {
	Blocks  []Block
	Reorged bool
}

// TxHash returns the deterministic hash assigned to the fixture transaction
// at a global index.
func TxHash(index uint64) chainhash.Hash {
	var seed [10]byte
	copy(seed[:2], "tx")
	binary.BigEndian.PutUint64(seed[2:], index)
	return chainhash.DoubleHashH(seed[:])
}

// BlockHash returns the deterministic hash assigned to the fixture block at
// a height.
func BlockHash(height uint32) chainhash.Hash {
	var seed [7]byte
	copy(seed[:3], "blk")
	binary.BigEndian.PutUint32(seed[3:], height)
	return chainhash.DoubleHashH(seed[:])
}

// Write lays the fixture chain out as a dataset under dir. Address ids are
// assigned densely per type in first-seen order; the address string table
// only lists kinds with a textual encoding, matching what a real builder
// derives from mainnet params.
func Write(dir string, chain Chain) error {
	txs, addrCounts, strings, err := assemble(chain)
	if err != nil {
		return err
	}

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("open fixture dataset: %w", err)
	}
	defer db.Close()

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	set := func(key, value []byte) error {
		return wb.Set(key, value)
	}

	if err := writeMeta(set, chain, txs, addrCounts); err != nil {
		return err
	}
	if err := writeBlocks(set, chain); err != nil {
		return err
	}
	if err := writeTxs(set, txs); err != nil {
		return err
	}
	if err := writeAddresses(set, txs, strings); err != nil {
		return err
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush fixture dataset: %w", err)
	}
	return nil
}

// assembled carries one laid-out transaction with its script variants.
type assembled struct {
	tx       model.Transaction
	variants []script.Variant
}

func assemble(chain Chain) ([]assembled, map[model.AddressType]uint32, map[string]model.Address, error) {
	ids := make(map[string]model.Address)
	counts := make(map[model.AddressType]uint32)
	strings := make(map[string]model.Address)

	assign := func(v script.Variant) (model.Address, error) {
		key := fmt.Sprintf("%d/%x", v.Kind(), v.Payload())
		if addr, ok := ids[key]; ok {
			return addr, nil
		}
		addr := model.Address{Type: v.Kind(), Num: counts[v.Kind()]}
		counts[v.Kind()]++
		ids[key] = addr
		if v.Addressable() {
			encoded, err := v.Encode(&chaincfg.MainNetParams)
			if err != nil {
				return model.Address{}, err
			}
			if _, taken := strings[encoded]; !taken {
				strings[encoded] = addr
			}
		}
		return addr, nil
	}

	var out []assembled
	index := uint64(0)
	for height, block := range chain.Blocks {
		for _, tx := range block.Txs {
			m := model.Transaction{
				Index:  index,
				Hash:   TxHash(index),
				Height: height,
			}
			if len(tx.Inputs) == 0 {
				m.Inputs = []model.Input{{Coinbase: true}}
			}
			for _, in := range tx.Inputs {
				m.Inputs = append(m.Inputs, model.Input{PrevTx: in.PrevTx, PrevOut: in.PrevOut})
			}
			variants := make([]script.Variant, len(tx.Outputs))
			for i, o := range tx.Outputs {
				addr, err := assign(o.Script)
				if err != nil {
					return nil, nil, nil, err
				}
				m.Outputs = append(m.Outputs, model.Output{Value: o.Value, Address: addr})
				variants[i] = o.Script
			}
			out = append(out, assembled{tx: m, variants: variants})
			index++
		}
	}

	// Mark spends now that every output exists.
	for _, a := range out {
		for vin, in := range a.tx.Inputs {
			if in.Coinbase {
				continue
			}
			if in.PrevTx >= uint64(len(out)) {
				return nil, nil, nil, fmt.Errorf("input of tx %d spends unknown tx %d", a.tx.Index, in.PrevTx)
			}
			prev := out[in.PrevTx].tx
			if int(in.PrevOut) >= len(prev.Outputs) {
				return nil, nil, nil, fmt.Errorf("input of tx %d spends missing output %d/%d", a.tx.Index, in.PrevTx, in.PrevOut)
			}
			prev.Outputs[in.PrevOut].SpentBy = &model.OutputRef{Tx: a.tx.Index, Input: uint32(vin)}
		}
	}

	return out, counts, strings, nil
}

func writeMeta(set func(key, value []byte) error, chain Chain, txs []assembled, counts map[model.AddressType]uint32) error {
	version := make([]byte, 4)
	binary.BigEndian.PutUint32(version, storage.FormatVersion)
	if err := set(storage.MetaKey("version"), version); err != nil {
		return err
	}
	if err := set(storage.MetaKey("blocks"), beUint64(uint64(len(chain.Blocks)))); err != nil {
		return err
	}
	if err := set(storage.MetaKey("txs"), beUint64(uint64(len(txs)))); err != nil {
		return err
	}
	if chain.Reorged {
		if err := set(storage.MetaKey("reorg"), []byte{1}); err != nil {
			return err
		}
	}
	for t, count := range counts {
		if err := set(storage.AddrCountKey(uint8(t)), beUint64(uint64(count))); err != nil {
			return err
		}
	}
	return nil
}

func writeBlocks(set func(key, value []byte) error, chain Chain) error {
	first := uint64(0)
	for height, block := range chain.Blocks {
		hash := BlockHash(uint32(height))
		record := storage.EncodeBlockRecord(model.Block{
			Height:       height,
			Hash:         hash,
			Time:         block.Time,
			FirstTxIndex: first,
			TxCount:      uint32(len(block.Txs)),
		})
		if err := set(storage.BlockKey(uint32(height)), record); err != nil {
			return err
		}
		height32 := make([]byte, 4)
		binary.BigEndian.PutUint32(height32, uint32(height))
		if err := set(storage.BlockHashKey(hash[:]), height32); err != nil {
			return err
		}
		first += uint64(len(block.Txs))
	}
	return nil
}

func writeTxs(set func(key, value []byte) error, txs []assembled) error {
	for _, a := range txs {
		if err := set(storage.TxKey(a.tx.Index), storage.EncodeTxRecord(a.tx)); err != nil {
			return err
		}
		if err := set(storage.TxHashKey(a.tx.Hash[:]), beUint64(a.tx.Index)); err != nil {
			return err
		}
		for _, out := range a.tx.Outputs {
			if err := set(storage.OutputTypeKey(uint8(out.Address.Type), a.tx.Index), nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeAddresses(set func(key, value []byte) error, txs []assembled, strings map[string]model.Address) error {
	written := make(map[string]bool)
	for _, a := range txs {
		for i, out := range a.tx.Outputs {
			key := fmt.Sprintf("%d/%d", out.Address.Type, out.Address.Num)
			if written[key] {
				continue
			}
			written[key] = true
			if err := set(storage.ScriptKey(uint8(out.Address.Type), out.Address.Num), a.variants[i].Payload()); err != nil {
				return err
			}
		}
	}
	for encoded, addr := range strings {
		if err := set(storage.AddrStringKey(encoded), storage.EncodeAddressRef(addr)); err != nil {
			return err
		}
	}
	return nil
}

func beUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
