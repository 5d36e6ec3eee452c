package datasettest

import (
	"encoding/hex"
	"time"

	"github.com/gyoonit/blocksci/internal/chaindb/script"
)

// Well-known secp256k1 points, usable wherever a fixture needs a parseable
// public key.
const (
	PubKeyHexG  = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	PubKeyHex2G = "02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
)

// PubKey decodes one of the hex pubkey constants.
func PubKey(hexKey string) []byte {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		panic(err)
	}
	return key
}

func hash20(fill byte) []byte {
	h := make([]byte, 20)
	for i := range h {
		h[i] = fill
	}
	return h
}

func hash32(fill byte) []byte {
	h := make([]byte, 32)
	for i := range h {
		h[i] = fill
	}
	return h
}

// SampleChain is the canonical three-block fixture with per-block
// transaction counts [2, 5, 1], touching every script kind, with spends
// within and across blocks and a known set of unspent outputs.
//
// Global tx indexes and spend structure:
//
//	block 0: tx0 coinbase -> p2pkh#1(50), pubkey(10)
//	         tx1 coinbase -> p2sh(20)
//	block 1: tx2 spends tx0/0 -> p2wpkh(30), p2pkh#2(19)
//	         tx3 spends tx1/0 -> p2wsh(20)
//	         tx4 coinbase -> taproot(25)
//	         tx5 spends tx2/0 -> multisig(15), nulldata(0), p2pkh#1(14)
//	         tx6 coinbase -> nonstandard(5)
//	block 2: tx7 spends tx5/0 -> p2pkh#1(15)
//
// Unspent afterwards: tx0/1, tx2/1, tx3/0, tx4/0, tx5/1, tx5/2, tx6/0, tx7/0.
func SampleChain() Chain {
	t0 := time.Date(2016, 3, 1, 12, 0, 0, 0, time.UTC)

	p2pkh1 := script.NewPubkeyHash(hash20(0x11))
	p2pkh2 := script.NewPubkeyHash(hash20(0x22))
	pubkey := script.NewPubkey(PubKey(PubKeyHexG))
	p2sh := script.NewScriptHash(hash20(0x33))
	p2wpkh := script.NewWitnessPubkeyHash(hash20(0x44))
	p2wsh := script.NewWitnessScriptHash(hash32(0x55))
	taproot := script.NewWitnessTaproot(hash32(0x66))
	multisig := script.NewMultisig(1, [][]byte{PubKey(PubKeyHexG), PubKey(PubKeyHex2G)})
	nulldata := script.NewNullData([]byte("charley loves heidi"))
	nonstandard := script.NewNonstandard([]byte{0x51, 0x52})

	return Chain{Blocks: []Block{
		{
			Time: t0,
			Txs: []Tx{
				{Outputs: []Output{{Value: 50, Script: p2pkh1}, {Value: 10, Script: pubkey}}},
				{Outputs: []Output{{Value: 20, Script: p2sh}}},
			},
		},
		{
			Time: t0.Add(10 * time.Minute),
			Txs: []Tx{
				{Inputs: []Input{{PrevTx: 0, PrevOut: 0}}, Outputs: []Output{{Value: 30, Script: p2wpkh}, {Value: 19, Script: p2pkh2}}},
				{Inputs: []Input{{PrevTx: 1, PrevOut: 0}}, Outputs: []Output{{Value: 20, Script: p2wsh}}},
				{Outputs: []Output{{Value: 25, Script: taproot}}},
				{Inputs: []Input{{PrevTx: 2, PrevOut: 0}}, Outputs: []Output{{Value: 15, Script: multisig}, {Value: 0, Script: nulldata}, {Value: 14, Script: p2pkh1}}},
				{Outputs: []Output{{Value: 5, Script: nonstandard}}},
			},
		},
		{
			Time: t0.Add(20 * time.Minute),
			Txs: []Tx{
				{Inputs: []Input{{PrevTx: 5, PrevOut: 0}}, Outputs: []Output{{Value: 15, Script: p2pkh1}}},
			},
		},
	}}
}
