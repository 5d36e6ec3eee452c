package model

import "testing"

func TestAddressTypeNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addrType AddressType
		name     string
	}{
		{AddressNonstandard, "nonstandard"},
		{AddressPubkey, "pubkey"},
		{AddressPubkeyHash, "pubkeyhash"},
		{AddressScriptHash, "scripthash"},
		{AddressMultisig, "multisig"},
		{AddressWitnessPubkeyHash, "witness_v0_keyhash"},
		{AddressWitnessScriptHash, "witness_v0_scripthash"},
		{AddressWitnessTaproot, "witness_v1_taproot"},
		{AddressWitnessUnknown, "witness_unknown"},
		{AddressNullData, "nulldata"},
	}

	for _, tt := range tests {
		if got := tt.addrType.String(); got != tt.name {
			t.Fatalf("String() = %q, want %q", got, tt.name)
		}
		parsed, err := ParseAddressType(tt.name)
		if err != nil {
			t.Fatalf("ParseAddressType(%q): %v", tt.name, err)
		}
		if parsed != tt.addrType {
			t.Fatalf("ParseAddressType(%q) = %v, want %v", tt.name, parsed, tt.addrType)
		}
		if !tt.addrType.Valid() {
			t.Fatalf("%v should be valid", tt.addrType)
		}
	}
}

func TestAddressTypeUnknown(t *testing.T) {
	t.Parallel()

	if AddressType(200).Valid() {
		t.Fatal("type 200 should not be valid")
	}
	if _, err := ParseAddressType("p2pk"); err == nil {
		t.Fatal("expected error for unknown name")
	}
	if got := len(AddressTypes()); got != 10 {
		t.Fatalf("AddressTypes() has %d entries, want 10", got)
	}
}

func TestOutputSpent(t *testing.T) {
	t.Parallel()

	unspent := Output{Value: 1, Address: Address{Type: AddressPubkeyHash, Num: 0}}
	if unspent.Spent() {
		t.Fatal("output with no spender reported spent")
	}

	spent := unspent
	spent.SpentBy = &OutputRef{Tx: 7, Input: 0}
	if !spent.Spent() {
		t.Fatal("output with spender reported unspent")
	}
}
