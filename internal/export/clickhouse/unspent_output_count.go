package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// UnspentOutputCount returns the number of exported unspent outputs for a
// network.
func (r *Repository) UnspentOutputCount(ctx context.Context, network string) (uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("unspent_output_count", err, start)
	}()

	const query = `SELECT count() FROM analysis_unspent_outputs WHERE network = ?`

	var count uint64
	if err = r.conn.QueryRow(ctx, query, network).Scan(&count); err != nil {
		err = fmt.Errorf("count unspent outputs: %w", err)
		return 0, err
	}
	return count, nil
}
