package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gyoonit/blocksci/internal/chaindb/model"
)

// Record layouts. All integers big-endian.
const (
	blockRecordSize = hashSize + 8 + 8 + 4         // hash, unix time, first tx index, tx count
	txHeaderSize    = hashSize + 4 + 4 + 4         // hash, height, input count, output count
	inputSize       = 8 + 4                        // prev tx index, prev output position
	outputSize      = 8 + addrRefSize + 8 + 4      // value, address ref, spending tx index, spending input
)

// coinbaseMarker and unspentMarker occupy the prev/spending tx index field
// when an input spends nothing or an output has no spender.
const (
	coinbaseMarker = math.MaxUint64
	unspentMarker  = math.MaxUint64
)

// EncodeBlockRecord serializes a block summary row.
func EncodeBlockRecord(b model.Block) []byte {
	buf := make([]byte, 0, blockRecordSize)
	buf = append(buf, b.Hash[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(b.Time.Unix()))
	buf = binary.BigEndian.AppendUint64(buf, b.FirstTxIndex)
	buf = binary.BigEndian.AppendUint32(buf, b.TxCount)
	return buf
}

// DecodeBlockRecord parses a block summary row. The caller supplies the
// height, which lives in the key.
func DecodeBlockRecord(height uint32, data []byte) (model.Block, error) {
	if len(data) != blockRecordSize {
		return model.Block{}, fmt.Errorf("block record is %d bytes, want %d: %w", len(data), blockRecordSize, model.ErrDataset)
	}
	var b model.Block
	b.Height = int(height)
	copy(b.Hash[:], data[:hashSize])
	b.Time = time.Unix(int64(binary.BigEndian.Uint64(data[hashSize:hashSize+8])), 0).UTC()
	b.FirstTxIndex = binary.BigEndian.Uint64(data[hashSize+8 : hashSize+16])
	b.TxCount = binary.BigEndian.Uint32(data[hashSize+16:])
	return b, nil
}

// EncodeTxRecord serializes a transaction with its inputs and outputs.
func EncodeTxRecord(tx model.Transaction) []byte {
	buf := make([]byte, 0, txHeaderSize+len(tx.Inputs)*inputSize+len(tx.Outputs)*outputSize)
	buf = append(buf, tx.Hash[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(tx.Height))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(tx.Outputs)))

	for _, in := range tx.Inputs {
		prev := in.PrevTx
		if in.Coinbase {
			prev = coinbaseMarker
		}
		buf = binary.BigEndian.AppendUint64(buf, prev)
		buf = binary.BigEndian.AppendUint32(buf, in.PrevOut)
	}
	for _, out := range tx.Outputs {
		buf = binary.BigEndian.AppendUint64(buf, uint64(out.Value))
		buf = append(buf, byte(out.Address.Type))
		buf = binary.BigEndian.AppendUint32(buf, out.Address.Num)
		spentTx := uint64(unspentMarker)
		var spentInput uint32
		if out.SpentBy != nil {
			spentTx = out.SpentBy.Tx
			spentInput = out.SpentBy.Input
		}
		buf = binary.BigEndian.AppendUint64(buf, spentTx)
		buf = binary.BigEndian.AppendUint32(buf, spentInput)
	}
	return buf
}

// DecodeTxRecord parses a transaction record. The caller supplies the global
// index, which lives in the key.
func DecodeTxRecord(index uint64, data []byte) (model.Transaction, error) {
	if len(data) < txHeaderSize {
		return model.Transaction{}, fmt.Errorf("tx record is %d bytes, want at least %d: %w", len(data), txHeaderSize, model.ErrDataset)
	}
	var tx model.Transaction
	tx.Index = index
	copy(tx.Hash[:], data[:hashSize])
	tx.Height = int(binary.BigEndian.Uint32(data[hashSize : hashSize+4]))
	numIn := int(binary.BigEndian.Uint32(data[hashSize+4 : hashSize+8]))
	numOut := int(binary.BigEndian.Uint32(data[hashSize+8 : hashSize+12]))

	want := txHeaderSize + numIn*inputSize + numOut*outputSize
	if len(data) != want {
		return model.Transaction{}, fmt.Errorf("tx record is %d bytes, want %d: %w", len(data), want, model.ErrDataset)
	}

	rest := data[txHeaderSize:]
	tx.Inputs = make([]model.Input, numIn)
	for i := 0; i < numIn; i++ {
		prev := binary.BigEndian.Uint64(rest[:8])
		tx.Inputs[i] = model.Input{
			PrevTx:   prev,
			PrevOut:  binary.BigEndian.Uint32(rest[8:12]),
			Coinbase: prev == coinbaseMarker,
		}
		if tx.Inputs[i].Coinbase {
			tx.Inputs[i].PrevTx = 0
			tx.Inputs[i].PrevOut = 0
		}
		rest = rest[inputSize:]
	}

	tx.Outputs = make([]model.Output, numOut)
	for i := 0; i < numOut; i++ {
		out := model.Output{
			Value: int64(binary.BigEndian.Uint64(rest[:8])),
			Address: model.Address{
				Type: model.AddressType(rest[8]),
				Num:  binary.BigEndian.Uint32(rest[9:13]),
			},
		}
		spentTx := binary.BigEndian.Uint64(rest[13:21])
		if spentTx != unspentMarker {
			out.SpentBy = &model.OutputRef{Tx: spentTx, Input: binary.BigEndian.Uint32(rest[21:25])}
		}
		tx.Outputs[i] = out
		rest = rest[outputSize:]
	}
	return tx, nil
}

// EncodeAddressRef serializes a (type, num) address reference.
func EncodeAddressRef(addr model.Address) []byte {
	buf := make([]byte, addrRefSize)
	buf[0] = byte(addr.Type)
	binary.BigEndian.PutUint32(buf[1:], addr.Num)
	return buf
}

// DecodeAddressRef parses a (type, num) address reference.
func DecodeAddressRef(data []byte) (model.Address, error) {
	if len(data) != addrRefSize {
		return model.Address{}, fmt.Errorf("address ref is %d bytes, want %d: %w", len(data), addrRefSize, model.ErrDataset)
	}
	return model.Address{
		Type: model.AddressType(data[0]),
		Num:  binary.BigEndian.Uint32(data[1:]),
	}, nil
}
