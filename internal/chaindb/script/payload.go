package script

import (
	"encoding/binary"
	"fmt"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// Payload sizes fixed by the dataset format.
const (
	hash160Size        = 20
	witnessV0HashSize  = 20
	witnessV0WSHSize   = 32
	taprootProgramSize = 32
)

// FromPayload reconstructs a Variant from the script payload stored in the
// dataset for the given address type.
func FromPayload(t model.AddressType, payload []byte) (Variant, error) {
	switch t {
	case model.AddressPubkey:
		if len(payload) == 0 {
			return Variant{}, fmt.Errorf("empty pubkey payload: %w", model.ErrDataset)
		}
		return NewPubkey(payload), nil
	case model.AddressPubkeyHash:
		if len(payload) != hash160Size {
			return Variant{}, fmt.Errorf("pubkeyhash payload is %d bytes, want %d: %w", len(payload), hash160Size, model.ErrDataset)
		}
		return NewPubkeyHash(payload), nil
	case model.AddressScriptHash:
		if len(payload) != hash160Size {
			return Variant{}, fmt.Errorf("scripthash payload is %d bytes, want %d: %w", len(payload), hash160Size, model.ErrDataset)
		}
		return NewScriptHash(payload), nil
	case model.AddressMultisig:
		return multisigFromPayload(payload)
	case model.AddressWitnessPubkeyHash:
		if len(payload) != witnessV0HashSize {
			return Variant{}, fmt.Errorf("witness keyhash payload is %d bytes, want %d: %w", len(payload), witnessV0HashSize, model.ErrDataset)
		}
		return NewWitnessPubkeyHash(payload), nil
	case model.AddressWitnessScriptHash:
		if len(payload) != witnessV0WSHSize {
			return Variant{}, fmt.Errorf("witness scripthash payload is %d bytes, want %d: %w", len(payload), witnessV0WSHSize, model.ErrDataset)
		}
		return NewWitnessScriptHash(payload), nil
	case model.AddressWitnessTaproot:
		if len(payload) != taprootProgramSize {
			return Variant{}, fmt.Errorf("taproot payload is %d bytes, want %d: %w", len(payload), taprootProgramSize, model.ErrDataset)
		}
		return NewWitnessTaproot(payload), nil
	case model.AddressWitnessUnknown:
		return NewWitnessUnknown(payload), nil
	case model.AddressNullData:
		return NewNullData(payload), nil
	case model.AddressNonstandard:
		return NewNonstandard(payload), nil
	default:
		return Variant{}, fmt.Errorf("unknown address type %d: %w", uint8(t), model.ErrDataset)
	}
}

// Payload serializes the variant into its dataset payload form, the inverse
// of FromPayload.
func (v Variant) Payload() []byte {
	switch v.kind {
	case model.AddressPubkey:
		return cloneBytes(v.pubKey)
	case model.AddressPubkeyHash, model.AddressScriptHash,
		model.AddressWitnessPubkeyHash, model.AddressWitnessScriptHash, model.AddressWitnessTaproot:
		return cloneBytes(v.hash)
	case model.AddressMultisig:
		return multisigPayload(v.required, v.keys)
	default:
		return cloneBytes(v.data)
	}
}

func multisigPayload(required int, keys [][]byte) []byte {
	size := 4
	for _, key := range keys {
		size += 1 + len(key)
	}
	payload := make([]byte, 0, size)
	payload = binary.BigEndian.AppendUint16(payload, uint16(required))
	payload = binary.BigEndian.AppendUint16(payload, uint16(len(keys)))
	for _, key := range keys {
		payload = append(payload, byte(len(key)))
		payload = append(payload, key...)
	}
	return payload
}

func multisigFromPayload(payload []byte) (Variant, error) {
	if len(payload) < 4 {
		return Variant{}, fmt.Errorf("multisig payload is %d bytes, want at least 4: %w", len(payload), model.ErrDataset)
	}
	required := int(binary.BigEndian.Uint16(payload[0:2]))
	total := int(binary.BigEndian.Uint16(payload[2:4]))

	keys := make([][]byte, 0, total)
	rest := payload[4:]
	for i := 0; i < total; i++ {
		if len(rest) < 1 {
			return Variant{}, fmt.Errorf("multisig payload truncated at key %d: %w", i, model.ErrDataset)
		}
		keyLen := int(rest[0])
		rest = rest[1:]
		if len(rest) < keyLen {
			return Variant{}, fmt.Errorf("multisig key %d is %d bytes, want %d: %w", i, len(rest), keyLen, model.ErrDataset)
		}
		keys = append(keys, rest[:keyLen])
		rest = rest[keyLen:]
	}
	if len(rest) != 0 {
		return Variant{}, fmt.Errorf("multisig payload has %d trailing bytes: %w", len(rest), model.ErrDataset)
	}
	if required < 1 || required > total {
		return Variant{}, fmt.Errorf("multisig threshold %d of %d keys: %w", required, total, model.ErrDataset)
	}
	return NewMultisig(required, keys), nil
}
