package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
)

func unspentOutputsQuery() string {
	return `
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
}

func sampleUnspentRow() UnspentOutputRow {
	return UnspentOutputRow{
		Network:     "mainnet",
		TxIndex:     5,
		TxHash:      "a1b2",
		Height:      1,
		OutputIndex: 2,
		Value:       14,
		AddressType: "pubkeyhash",
		AddressNum:  0,
	}
}

func expectAppendUnspent(batch *MockBatchMockRecorder, row UnspentOutputRow) *gomock.Call {
	return batch.Append(
		row.Network,
		row.TxIndex,
		row.TxHash,
		row.Height,
		row.OutputIndex,
		row.Value,
		row.AddressType,
		row.AddressNum,
	)
}

func TestRepository_InsertUnspentOutputs(t *testing.T) {
	ctx := context.Background()
	row := sampleUnspentRow()

	tests := []struct {
		name    string
		rows    []UnspentOutputRow
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
					Observe("insert_unspent_outputs", nil, gomock.AssignableToTypeOf(time.Time{}))

				return &Repository{conn: nil, metrics: mockMetrics}
			},
		},
		{
			name: "prepare batch error",
			rows: []UnspentOutputRow{row},
			setup: func(t *testing.T) *Repository {
				ctrl := gomock.NewController(t)
				t.Cleanup(ctrl.Finish)

				mockConn := NewMockConn(ctrl)
				mockMetrics := NewMockMetrics(ctrl)

				prepareErr := errors.New("prepare failed")

				gomock.InOrder(
					mockConn.EXPECT().
						PrepareBatch(ctx, unspentOutputsQuery()).
						Return(nil, prepareErr),
					mockMetrics.EXPECT().
						Observe("insert_unspent_outputs", gomock.Any(), gomock.AssignableToTypeOf(time.Time{})).
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
			name: "append error",
			rows: []UnspentOutputRow{row},
			setup: func(t *testing.T) *Repository {
				ctrl := gomock.NewController(t)
				t.Cleanup(ctrl.Finish)

				mockConn := NewMockConn(ctrl)
				mockBatch := NewMockBatch(ctrl)
				mockMetrics := NewMockMetrics(ctrl)

				appendErr := errors.New("append failed")

				gomock.InOrder(
					mockConn.EXPECT().
						PrepareBatch(ctx, unspentOutputsQuery()).
						Return(mockBatch, nil),
					expectAppendUnspent(mockBatch.EXPECT(), row).
						Return(appendErr),
					mockMetrics.EXPECT().
						Observe("insert_unspent_outputs", gomock.Any(), gomock.AssignableToTypeOf(time.Time{})).
						Do(func(_ string, err error, _ time.Time) {
							if !errors.Is(err, appendErr) {
								t.Fatalf("unexpected error in metrics: %v", err)
							}
						}),
				)

				return &Repository{conn: mockConn, metrics: mockMetrics}
			},
			wantErr: true,
		},
		{
			name: "send error",
			rows: []UnspentOutputRow{row},
			setup: func(t *testing.T) *Repository {
				ctrl := gomock.NewController(t)
				t.Cleanup(ctrl.Finish)

				mockConn := NewMockConn(ctrl)
				mockBatch := NewMockBatch(ctrl)
				mockMetrics := NewMockMetrics(ctrl)

				sendErr := errors.New("send failed")

				gomock.InOrder(
					mockConn.EXPECT().
						PrepareBatch(ctx, unspentOutputsQuery()).
						Return(mockBatch, nil),
					expectAppendUnspent(mockBatch.EXPECT(), row).
						Return(nil),
					mockBatch.EXPECT().
						Send().
						Return(sendErr),
					mockMetrics.EXPECT().
						Observe("insert_unspent_outputs", gomock.Any(), gomock.AssignableToTypeOf(time.Time{})).
						Do(func(_ string, err error, _ time.Time) {
							if !errors.Is(err, sendErr) {
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
			rows: []UnspentOutputRow{row},
			setup: func(t *testing.T) *Repository {
				ctrl := gomock.NewController(t)
				t.Cleanup(ctrl.Finish)

				mockConn := NewMockConn(ctrl)
				mockBatch := NewMockBatch(ctrl)
				mockMetrics := NewMockMetrics(ctrl)

				gomock.InOrder(
					mockConn.EXPECT().
						PrepareBatch(ctx, unspentOutputsQuery()).
						Return(mockBatch, nil),
					expectAppendUnspent(mockBatch.EXPECT(), row).
						Return(nil),
					mockBatch.EXPECT().
						Send().
						Return(nil),
					mockMetrics.EXPECT().
						Observe("insert_unspent_outputs", nil, gomock.AssignableToTypeOf(time.Time{})),
				)

				return &Repository{conn: mockConn, metrics: mockMetrics}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := tt.setup(t)
			if err := repo.InsertUnspentOutputs(ctx, tt.rows); (err != nil) != tt.wantErr {
				t.Fatalf("InsertUnspentOutputs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
