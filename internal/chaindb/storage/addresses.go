package storage

import (
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// AddressRow pairs an encoded address string with its (type, num) reference.
type AddressRow struct {
	Encoded string
	Address model.Address
}

// ScriptPayload reads the raw script payload of an address.
func (s *Store) ScriptPayload(addr model.Address) ([]byte, error) {
	data, err := s.get(ScriptKey(uint8(addr.Type), addr.Num))
	if err != nil {
		return nil, fmt.Errorf("script %s/%d: %w", addr.Type, addr.Num, err)
	}
	return data, nil
}

// AddressByString resolves an encoded address string to its reference.
// Reports model.ErrNotFound when the dataset has no such address.
func (s *Store) AddressByString(encoded string) (model.Address, error) {
	data, err := s.get(AddrStringKey(encoded))
	if err != nil {
		return model.Address{}, fmt.Errorf("address %q: %w", encoded, err)
	}
	return DecodeAddressRef(data)
}

// AddressesByPrefix lazily yields every address whose encoded string begins
// with prefix. Keys are stored in encoding order, so rows come out in
// ascending lexicographic order of the encoded string.
func (s *Store) AddressesByPrefix(prefix string) iter.Seq2[AddressRow, error] {
	return func(yield func(AddressRow, error) bool) {
		stopped := false
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = AddrStringKey(prefix)
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				item := it.Item()
				encoded := string(item.Key()[1:])
				data, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				addr, err := DecodeAddressRef(data)
				if err != nil {
					return fmt.Errorf("address %q: %w", encoded, err)
				}
				if !yield(AddressRow{Encoded: encoded, Address: addr}, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(AddressRow{}, err)
		}
	}
}
