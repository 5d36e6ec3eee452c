// Package storage reads the immutable on-disk dataset produced by the
// external builder. The dataset is a Badger database opened read-only; all
// keys are fixed-layout binary with big-endian integers so that
// lexicographic key order matches chain order. Key builders are exported
// because the layout is the contract between the builder and this engine.
package storage

import (
	"encoding/binary"
	"fmt"
)

// Key space prefixes. One byte each, followed by the fixed-layout remainder.
const (
	prefixBlock      byte = 'b' // b + height(4) -> block record
	prefixBlockHash  byte = 'B' // B + hash(32) -> height(4)
	prefixTx         byte = 't' // t + txIndex(8) -> tx record
	prefixTxHash     byte = 'T' // T + hash(32) -> txIndex(8)
	prefixScript     byte = 's' // s + type(1) + num(4) -> script payload
	prefixAddrString byte = 'a' // a + encoded address -> type(1) + num(4)
	prefixOutputType byte = 'o' // o + type(1) + txIndex(8) -> empty
	prefixMeta       byte = 'm' // m + ':' + name -> metadata value
)

const (
	hashSize    = 32
	heightSize  = 4
	txIndexSize = 8
	addrRefSize = 5 // type(1) + num(4)
)

// Metadata keys.
var (
	keyMetaVersion    = MetaKey("version")
	keyMetaBlockCount = MetaKey("blocks")
	keyMetaTxCount    = MetaKey("txs")
	keyMetaReorg      = MetaKey("reorg")
)

// MetaKey builds the key of a named metadata value. "version" holds the
// format version as a big-endian uint32, "blocks" and "txs" the chain counts
// as big-endian uint64, and "reorg" is present when the builder detected a
// chain reorganization.
func MetaKey(name string) []byte {
	return append([]byte{prefixMeta, ':'}, name...)
}

// AddrCountKey holds the assigned-id count of one address type.
func AddrCountKey(addrType uint8) []byte {
	return append(MetaKey("addrs:"), addrType)
}

// BlockKey locates the block record at a height.
func BlockKey(height uint32) []byte {
	key := make([]byte, 1+heightSize)
	key[0] = prefixBlock
	binary.BigEndian.PutUint32(key[1:], height)
	return key
}

func parseBlockKey(key []byte) (uint32, error) {
	if len(key) != 1+heightSize || key[0] != prefixBlock {
		return 0, fmt.Errorf("invalid block key of %d bytes", len(key))
	}
	return binary.BigEndian.Uint32(key[1:]), nil
}

// BlockHashKey locates the height row of a block hash.
func BlockHashKey(hash []byte) []byte {
	key := make([]byte, 1, 1+hashSize)
	key[0] = prefixBlockHash
	return append(key, hash...)
}

// TxKey locates the transaction record at a global index.
func TxKey(index uint64) []byte {
	key := make([]byte, 1+txIndexSize)
	key[0] = prefixTx
	binary.BigEndian.PutUint64(key[1:], index)
	return key
}

// TxHashKey locates the index row of a transaction hash.
func TxHashKey(hash []byte) []byte {
	key := make([]byte, 1, 1+hashSize)
	key[0] = prefixTxHash
	return append(key, hash...)
}

// ScriptKey locates the script payload of an address.
func ScriptKey(addrType uint8, num uint32) []byte {
	key := make([]byte, 1+addrRefSize)
	key[0] = prefixScript
	key[1] = addrType
	binary.BigEndian.PutUint32(key[2:], num)
	return key
}

// AddrStringKey locates the (type, num) row of an encoded address string.
func AddrStringKey(encoded string) []byte {
	key := make([]byte, 1, 1+len(encoded))
	key[0] = prefixAddrString
	return append(key, encoded...)
}

// OutputTypeKey marks that a transaction has an output of the given type.
func OutputTypeKey(addrType uint8, txIndex uint64) []byte {
	key := make([]byte, 2+txIndexSize)
	key[0] = prefixOutputType
	key[1] = addrType
	binary.BigEndian.PutUint64(key[2:], txIndex)
	return key
}

func outputTypePrefix(addrType uint8) []byte {
	return []byte{prefixOutputType, addrType}
}

func parseOutputTypeKey(key []byte) (uint64, error) {
	if len(key) != 2+txIndexSize || key[0] != prefixOutputType {
		return 0, fmt.Errorf("invalid output type key of %d bytes", len(key))
	}
	return binary.BigEndian.Uint64(key[2:]), nil
}
