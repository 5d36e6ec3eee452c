package index

import (
	"errors"
	"fmt"
	"iter"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/internal/chaindb/script"
	"github.com/gyoonit/blocksci/internal/chaindb/storage"
)

// AddressIndex resolves addresses by numeric id, encoded string and string
// prefix, and answers which transactions produced outputs of a given type.
type AddressIndex struct {
	store   *storage.Store
	params  *chaincfg.Params
	txLimit uint64
}

// NewAddressIndex builds an address index view limited to the visible chain.
func NewAddressIndex(store *storage.Store, params *chaincfg.Params, txLimit uint64) *AddressIndex {
	return &AddressIndex{store: store, params: params, txLimit: txLimit}
}

// ResolveByIndex loads the script of an assigned (type, id) pair. Ids never
// assigned by the builder report model.ErrNotFound.
func (a *AddressIndex) ResolveByIndex(num uint32, t model.AddressType) (script.Variant, error) {
	if !t.Valid() {
		return script.Variant{}, fmt.Errorf("address type %d: %w", uint8(t), model.ErrInvalidArgument)
	}
	payload, err := a.store.ScriptPayload(model.Address{Type: t, Num: num})
	if err != nil {
		return script.Variant{}, err
	}
	return script.FromPayload(t, payload)
}

// ResolveByString decodes an address string and looks it up. A string that
// decodes but is unknown to this dataset returns (nil, nil); a string that
// fails to decode reports model.ErrMalformedInput.
func (a *AddressIndex) ResolveByString(encoded string) (*script.Variant, error) {
	if _, err := script.Decode(encoded, a.params); err != nil {
		return nil, err
	}

	addr, err := a.store.AddressByString(encoded)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	variant, err := a.ResolveByIndex(addr.Num, addr.Type)
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// ResolveByPrefix returns every dataset address whose encoded form begins
// with prefix, ascending by encoded string. A prefix matching nothing yields
// an empty slice, not an error.
func (a *AddressIndex) ResolveByPrefix(prefix string) ([]script.Variant, error) {
	var variants []script.Variant
	for row, err := range a.store.AddressesByPrefix(prefix) {
		if err != nil {
			return nil, err
		}
		variant, err := a.ResolveByIndex(row.Address.Num, row.Address.Type)
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	return variants, nil
}

// AddressesOfType lazily yields every assigned script of the given type in
// ascending id order. Ids are dense, so the sequence walks 0..AddressCount.
func (a *AddressIndex) AddressesOfType(t model.AddressType) iter.Seq2[script.Variant, error] {
	return func(yield func(script.Variant, error) bool) {
		count, err := a.AddressCount(t)
		if err != nil {
			yield(script.Variant{}, err)
			return
		}
		for num := uint64(0); num < count; num++ {
			variant, err := a.ResolveByIndex(uint32(num), t)
			if err != nil {
				yield(script.Variant{}, err)
				return
			}
			if !yield(variant, nil) {
				return
			}
		}
	}
}

// AddressCount returns the number of assigned ids of the given type. An
// upper bound on distinct addresses: ingestion may assign several ids to
// semantically identical scripts.
func (a *AddressIndex) AddressCount(t model.AddressType) (uint64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("address type %d: %w", uint8(t), model.ErrInvalidArgument)
	}
	return a.store.AddressCount(t)
}

// TransactionsWithOutputType lazily yields, in chain order, every visible
// transaction that has at least one output of the given address type.
func (a *AddressIndex) TransactionsWithOutputType(t model.AddressType) iter.Seq2[model.Transaction, error] {
	return func(yield func(model.Transaction, error) bool) {
		for index, err := range a.store.OutputTypeTxIndexes(t) {
			if err != nil {
				yield(model.Transaction{}, err)
				return
			}
			if index >= a.txLimit {
				return
			}
			tx, err := a.store.TransactionByIndex(index)
			if err != nil {
				yield(model.Transaction{}, err)
				return
			}
			if !yield(tx, nil) {
				return
			}
		}
	}
}
