// Package clickhouse exports chain analysis snapshots to ClickHouse for SQL
// exploration. It only ever writes derived rows; the dataset itself stays
// read-only.
package clickhouse

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

// Metrics records the outcome of repository operations.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Batch is the subset of a ClickHouse prepared batch the repository uses.
type Batch interface {
	Append(v ...any) error
	Send() error
}

// Row is a single-row query result.
type Row interface {
	Scan(dest ...any) error
}

// Conn is the subset of a ClickHouse connection the repository uses.
type Conn interface {
	PrepareBatch(ctx context.Context, query string) (Batch, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Close() error
}

// Repository writes analysis rows to ClickHouse.
type Repository struct {
	conn    Conn
	metrics Metrics
}

// NewRepository opens a ClickHouse connection from a DSN.
func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := ch.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := ch.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: driverConn{conn: conn}, metrics: metrics}, nil
}

// Close releases the connection.
func (r *Repository) Close() error {
	return r.conn.Close()
}

// driverConn narrows a driver connection to the Conn interface.
type driverConn struct {
	conn ch.Conn
}

func (c driverConn) PrepareBatch(ctx context.Context, query string) (Batch, error) {
	return c.conn.PrepareBatch(ctx, query)
}

func (c driverConn) QueryRow(ctx context.Context, query string, args ...any) Row {
	return c.conn.QueryRow(ctx, query, args...)
}

func (c driverConn) Close() error {
	return c.conn.Close()
}
