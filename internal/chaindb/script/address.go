package script

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// ErrUnaddressable reports a script kind with no standard textual address
// form (bare multisig, nulldata, nonstandard, unknown witness versions).
var ErrUnaddressable = errors.New("script kind has no address encoding")

// Decode parses a textual address into its variant. Strings that fail to
// decode under every known encoding report model.ErrMalformedInput.
func Decode(addr string, params *chaincfg.Params) (Variant, error) {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return Variant{}, fmt.Errorf("decode address %q: %w", addr, model.ErrMalformedInput)
	}
	if !decoded.IsForNet(params) {
		return Variant{}, fmt.Errorf("address %q is not for network %s: %w", addr, params.Name, model.ErrMalformedInput)
	}

	switch a := decoded.(type) {
	case *btcutil.AddressPubKey:
		return NewPubkey(a.ScriptAddress()), nil
	case *btcutil.AddressPubKeyHash:
		return NewPubkeyHash(a.Hash160()[:]), nil
	case *btcutil.AddressScriptHash:
		return NewScriptHash(a.Hash160()[:]), nil
	case *btcutil.AddressWitnessPubKeyHash:
		return NewWitnessPubkeyHash(a.WitnessProgram()), nil
	case *btcutil.AddressWitnessScriptHash:
		return NewWitnessScriptHash(a.WitnessProgram()), nil
	case *btcutil.AddressTaproot:
		return NewWitnessTaproot(a.WitnessProgram()), nil
	default:
		return Variant{}, fmt.Errorf("unsupported address form %q: %w", addr, model.ErrMalformedInput)
	}
}

// Encode renders the canonical textual address of the variant. Encoding is
// deterministic: Encode(Decode(s)) == s for every string the engine emits.
// Kinds without an address form report ErrUnaddressable.
func (v Variant) Encode(params *chaincfg.Params) (string, error) {
	var (
		addr btcutil.Address
		err  error
	)
	switch v.kind {
	case model.AddressPubkey:
		addr, err = btcutil.NewAddressPubKey(v.pubKey, params)
	case model.AddressPubkeyHash:
		addr, err = btcutil.NewAddressPubKeyHash(v.hash, params)
	case model.AddressScriptHash:
		addr, err = btcutil.NewAddressScriptHashFromHash(v.hash, params)
	case model.AddressWitnessPubkeyHash:
		addr, err = btcutil.NewAddressWitnessPubKeyHash(v.hash, params)
	case model.AddressWitnessScriptHash:
		addr, err = btcutil.NewAddressWitnessScriptHash(v.hash, params)
	case model.AddressWitnessTaproot:
		addr, err = btcutil.NewAddressTaproot(v.hash, params)
	default:
		return "", fmt.Errorf("%s: %w", v.kind, ErrUnaddressable)
	}
	if err != nil {
		return "", fmt.Errorf("encode %s address: %w", v.kind, err)
	}
	return addr.EncodeAddress(), nil
}

// Addressable reports whether the variant kind has a textual address form.
func (v Variant) Addressable() bool {
	switch v.kind {
	case model.AddressPubkey, model.AddressPubkeyHash, model.AddressScriptHash,
		model.AddressWitnessPubkeyHash, model.AddressWitnessScriptHash, model.AddressWitnessTaproot:
		return true
	default:
		return false
	}
}
