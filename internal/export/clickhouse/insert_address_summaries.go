package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// AddressSummaryRow is one exported per-type address count.
type AddressSummaryRow struct {
	Network      string
	AddressType  string
	AddressCount uint64
	ExportedAt   time.Time
}

// InsertAddressSummaries stores per-type address counts in ClickHouse.
func (r *Repository) InsertAddressSummaries(ctx context.Context, rows []AddressSummaryRow) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_address_summaries", err, start)
	}()

	if len(rows) == 0 {
		return nil
	}

	const query = `
INSERT INTO analysis_address_summary (
	network,
	address_type,
	address_count,
	exported_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		err = fmt.Errorf("prepare address summaries batch: %w", err)
		return err
	}

	for _, row := range rows {
		if err = batch.Append(
			row.Network,
			row.AddressType,
			row.AddressCount,
			row.ExportedAt,
		); err != nil {
			err = fmt.Errorf("append address summary: %w", err)
			return err
		}
	}

	if err = batch.Send(); err != nil {
		err = fmt.Errorf("insert address summaries: %w", err)
		return err
	}
	return nil
}
