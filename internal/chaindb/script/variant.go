// Package script models the spendable condition behind each address as a
// closed tagged variant. A Variant is immutable once constructed; accessors
// return a copy of the underlying bytes together with an ok flag that is true
// only for the matching kind.
package script

import (
	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// Variant is a tagged union over the supported script kinds. The zero value
// is a nonstandard script with no payload.
type Variant struct {
	kind model.AddressType

	pubKey   []byte
	hash     []byte
	required int
	keys     [][]byte
	data     []byte
}

// Kind returns the tag of the variant.
func (v Variant) Kind() model.AddressType {
	return v.kind
}

// NewPubkey builds a pay-to-pubkey variant from a serialized public key.
func NewPubkey(serialized []byte) Variant {
	return Variant{kind: model.AddressPubkey, pubKey: cloneBytes(serialized)}
}

// NewPubkeyHash builds a pay-to-pubkey-hash variant from a 20-byte hash160.
func NewPubkeyHash(hash160 []byte) Variant {
	return Variant{kind: model.AddressPubkeyHash, hash: cloneBytes(hash160)}
}

// NewScriptHash builds a pay-to-script-hash variant from a 20-byte hash160.
func NewScriptHash(hash160 []byte) Variant {
	return Variant{kind: model.AddressScriptHash, hash: cloneBytes(hash160)}
}

// NewMultisig builds a bare multisig variant requiring the given threshold of
// the listed serialized public keys.
func NewMultisig(required int, keys [][]byte) Variant {
	cloned := make([][]byte, len(keys))
	for i, key := range keys {
		cloned[i] = cloneBytes(key)
	}
	return Variant{kind: model.AddressMultisig, required: required, keys: cloned}
}

// NewWitnessPubkeyHash builds a v0 witness keyhash variant from a 20-byte program.
func NewWitnessPubkeyHash(program []byte) Variant {
	return Variant{kind: model.AddressWitnessPubkeyHash, hash: cloneBytes(program)}
}

// NewWitnessScriptHash builds a v0 witness scripthash variant from a 32-byte program.
func NewWitnessScriptHash(program []byte) Variant {
	return Variant{kind: model.AddressWitnessScriptHash, hash: cloneBytes(program)}
}

// NewWitnessTaproot builds a v1 taproot variant from a 32-byte x-only key.
func NewWitnessTaproot(program []byte) Variant {
	return Variant{kind: model.AddressWitnessTaproot, hash: cloneBytes(program)}
}

// NewWitnessUnknown builds a variant for a witness program of an unknown version.
func NewWitnessUnknown(script []byte) Variant {
	return Variant{kind: model.AddressWitnessUnknown, data: cloneBytes(script)}
}

// NewNullData builds an op-return variant carrying the embedded data.
func NewNullData(data []byte) Variant {
	return Variant{kind: model.AddressNullData, data: cloneBytes(data)}
}

// NewNonstandard builds a variant wrapping a raw script the engine cannot classify.
func NewNonstandard(script []byte) Variant {
	return Variant{kind: model.AddressNonstandard, data: cloneBytes(script)}
}

// PubKey returns the serialized public key of a pay-to-pubkey variant.
func (v Variant) PubKey() ([]byte, bool) {
	if v.kind != model.AddressPubkey {
		return nil, false
	}
	return cloneBytes(v.pubKey), true
}

// PubkeyHash returns the hash160 of a pay-to-pubkey-hash variant.
func (v Variant) PubkeyHash() ([]byte, bool) {
	if v.kind != model.AddressPubkeyHash {
		return nil, false
	}
	return cloneBytes(v.hash), true
}

// ScriptHash returns the hash160 of a pay-to-script-hash variant.
func (v Variant) ScriptHash() ([]byte, bool) {
	if v.kind != model.AddressScriptHash {
		return nil, false
	}
	return cloneBytes(v.hash), true
}

// Multisig returns the threshold and serialized keys of a bare multisig variant.
func (v Variant) Multisig() (required int, keys [][]byte, ok bool) {
	if v.kind != model.AddressMultisig {
		return 0, nil, false
	}
	cloned := make([][]byte, len(v.keys))
	for i, key := range v.keys {
		cloned[i] = cloneBytes(key)
	}
	return v.required, cloned, true
}

// WitnessProgram returns the witness program of a v0/v1 witness variant.
func (v Variant) WitnessProgram() ([]byte, bool) {
	switch v.kind {
	case model.AddressWitnessPubkeyHash, model.AddressWitnessScriptHash, model.AddressWitnessTaproot:
		return cloneBytes(v.hash), true
	default:
		return nil, false
	}
}

// Data returns the raw payload of a nulldata, nonstandard or unknown-witness variant.
func (v Variant) Data() ([]byte, bool) {
	switch v.kind {
	case model.AddressNullData, model.AddressNonstandard, model.AddressWitnessUnknown:
		return cloneBytes(v.data), true
	default:
		return nil, false
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
