package storage

import (
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// TransactionByIndex reads and decodes one transaction record.
func (s *Store) TransactionByIndex(index uint64) (model.Transaction, error) {
	data, err := s.get(TxKey(index))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", index, err)
	}
	return DecodeTxRecord(index, data)
}

// TxIndexByHash resolves a transaction hash to its global index.
func (s *Store) TxIndexByHash(hash []byte) (uint64, error) {
	data, err := s.get(TxHashKey(hash))
	if err != nil {
		return 0, fmt.Errorf("transaction hash %x: %w", hash, err)
	}
	if len(data) != txIndexSize {
		return 0, fmt.Errorf("transaction hash row is %d bytes, want %d: %w", len(data), txIndexSize, model.ErrDataset)
	}
	return binary.BigEndian.Uint64(data), nil
}

// Transactions lazily yields the decoded transactions in [start, stop) in
// index order. Each range over the sequence opens a fresh snapshot view, so
// the sequence is restartable.
func (s *Store) Transactions(start, stop uint64) iter.Seq2[model.Transaction, error] {
	return func(yield func(model.Transaction, error) bool) {
		stopped := false
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte{prefixTx}
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(TxKey(start)); it.Valid(); it.Next() {
				item := it.Item()
				index := binary.BigEndian.Uint64(item.Key()[1:])
				if index >= stop {
					return nil
				}
				data, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				tx, err := DecodeTxRecord(index, data)
				if err != nil {
					return err
				}
				if !yield(tx, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(model.Transaction{}, err)
		}
	}
}

// OutputTypeTxIndexes lazily yields, in chain order, the global index of
// every transaction with at least one output of the given address type.
func (s *Store) OutputTypeTxIndexes(t model.AddressType) iter.Seq2[uint64, error] {
	return func(yield func(uint64, error) bool) {
		stopped := false
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = outputTypePrefix(uint8(t))
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				index, err := parseOutputTypeKey(it.Item().Key())
				if err != nil {
					return fmt.Errorf("%v: %w", err, model.ErrDataset)
				}
				if !yield(index, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(0, err)
		}
	}
}
