package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// UnspentOutputRow is one exported unspent output.
type UnspentOutputRow struct {
	Network     string
	TxIndex     uint64
	TxHash      string
	Height      uint32
	OutputIndex uint32
	Value       int64
	AddressType string
	AddressNum  uint32
}

// InsertUnspentOutputs stores unspent output rows in ClickHouse.
func (r *Repository) InsertUnspentOutputs(ctx context.Context, rows []UnspentOutputRow) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_unspent_outputs", err, start)
	}()

	if len(rows) == 0 {
		return nil
	}

	const query = `
INSERT INTO analysis_unspent_outputs (
	network,
	tx_index,
	tx_hash,
	height,
	output_index,
	value,
	address_type,
	address_num
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		err = fmt.Errorf("prepare unspent outputs batch: %w", err)
		return err
	}

	for _, row := range rows {
		if err = batch.Append(
			row.Network,
			row.TxIndex,
			row.TxHash,
			row.Height,
			row.OutputIndex,
			row.Value,
			row.AddressType,
			row.AddressNum,
		); err != nil {
			err = fmt.Errorf("append unspent output: %w", err)
			return err
		}
	}

	if err = batch.Send(); err != nil {
		err = fmt.Errorf("insert unspent outputs: %w", err)
		return err
	}
	return nil
}
