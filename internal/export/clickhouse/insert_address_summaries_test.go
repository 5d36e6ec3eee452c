package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
)

func addressSummariesQuery() string {
	return `
INSERT INTO analysis_address_summary (
	network,
	address_type,
	address_count,
	exported_at
) VALUES`
}

func TestRepository_InsertAddressSummaries(t *testing.T) {
	ctx := context.Background()
	row := AddressSummaryRow{
		Network:      "mainnet",
		AddressType:  "pubkeyhash",
		AddressCount: 2,
		ExportedAt:   time.Unix(1700000000, 0),
	}

	tests := []struct {
		name    string
		rows    []AddressSummaryRow
		setup   func(t *testing.T) *Repository
		wantErr bool
	}{
		{
			name: "empty input still records metrics",
			rows: nil,
			setup: func(t *testing.T) *Repository {
				ctrl := gomock.NewController(t)
				t.Cleanup(ctrl.Finish)

				mockMetrics := NewMockMetrics(ctrl)
				mockMetrics.EXPECT().
					Observe("insert_address_summaries", nil, gomock.AssignableToTypeOf(time.Time{}))

				return &Repository{conn: nil, metrics: mockMetrics}
			},
		},
		{
			name: "prepare batch error",
			rows: []AddressSummaryRow{row},
			setup: func(t *testing.T) *Repository {
				ctrl := gomock.NewController(t)
				t.Cleanup(ctrl.Finish)

				mockConn := NewMockConn(ctrl)
				mockMetrics := NewMockMetrics(ctrl)

				prepareErr := errors.New("prepare failed")

				gomock.InOrder(
					mockConn.EXPECT().
						PrepareBatch(ctx, addressSummariesQuery()).
						Return(nil, prepareErr),
					mockMetrics.EXPECT().
						Observe("insert_address_summaries", gomock.Any(), gomock.AssignableToTypeOf(time.Time{})).
						Do(func(_ string, err error, _ time.Time) {
							if !errors.Is(err, prepareErr) {
								t.Fatalf("unexpected error in metrics: %v", err)
							}
						}),
				)

				return &Repository{conn: mockConn, metrics: mockMetrics}
			},
			wantErr: true,
		},
		{
			name: "success",
			rows: []AddressSummaryRow{row},
			setup: func(t *testing.T) *Repository {
				ctrl := gomock.NewController(t)
				t.Cleanup(ctrl.Finish)

				mockConn := NewMockConn(ctrl)
				mockBatch := NewMockBatch(ctrl)
				mockMetrics := NewMockMetrics(ctrl)

				gomock.InOrder(
					mockConn.EXPECT().
						PrepareBatch(ctx, addressSummariesQuery()).
						Return(mockBatch, nil),
					mockBatch.EXPECT().
						Append(row.Network, row.AddressType, row.AddressCount, row.ExportedAt).
						Return(nil),
					mockBatch.EXPECT().
						Send().
						Return(nil),
					mockMetrics.EXPECT().
						Observe("insert_address_summaries", nil, gomock.AssignableToTypeOf(time.Time{})),
				)

				return &Repository{conn: mockConn, metrics: mockMetrics}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := tt.setup(t)
			if err := repo.InsertAddressSummaries(ctx, tt.rows); (err != nil) != tt.wantErr {
				t.Fatalf("InsertAddressSummaries() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
