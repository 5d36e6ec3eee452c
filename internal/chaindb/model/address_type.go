package model

import "fmt"

// AddressType tags the script kind behind an address. Numeric address ids are
// dense per type; the same economic address appearing under several encodings
// keeps one (type, id) pair per encoding.
type AddressType uint8

const (
	AddressNonstandard AddressType = iota
	AddressPubkey
	AddressPubkeyHash
	AddressScriptHash
	AddressMultisig
	AddressWitnessPubkeyHash
	AddressWitnessScriptHash
	AddressWitnessTaproot
	AddressWitnessUnknown
	AddressNullData

	addressTypeCount
)

var addressTypeNames = map[AddressType]string{
	AddressNonstandard:       "nonstandard",
	AddressPubkey:            "pubkey",
	AddressPubkeyHash:        "pubkeyhash",
	AddressScriptHash:        "scripthash",
	AddressMultisig:          "multisig",
	AddressWitnessPubkeyHash: "witness_v0_keyhash",
	AddressWitnessScriptHash: "witness_v0_scripthash",
	AddressWitnessTaproot:    "witness_v1_taproot",
	AddressWitnessUnknown:    "witness_unknown",
	AddressNullData:          "nulldata",
}

func (t AddressType) String() string {
	if name, ok := addressTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("addresstype(%d)", uint8(t))
}

// Valid reports whether t is one of the known address types.
func (t AddressType) Valid() bool {
	return t < addressTypeCount
}

// AddressTypes lists every known address type in tag order.
func AddressTypes() []AddressType {
	types := make([]AddressType, 0, addressTypeCount)
	for t := AddressType(0); t < addressTypeCount; t++ {
		types = append(types, t)
	}
	return types
}

// ParseAddressType resolves the textual name of an address type.
func ParseAddressType(name string) (AddressType, error) {
	for t, n := range addressTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown address type %q: %w", name, ErrInvalidArgument)
}
