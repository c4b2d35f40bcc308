// Package dbmanager owns the PostgreSQL connection pool. Every logical
// operation runs on one pooled connection inside one transaction.
package dbmanager

import (
	"context"
	"database/sql"
	"time"
)

// Tx is the subset of *sql.Tx available to operations run by a Gateway.
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is the body of a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx Tx) error

// Gateway runs operations against the database.
type Gateway interface {
	// InTx acquires a connection, begins a transaction and runs fn. The
	// transaction is committed if fn succeeds and rolled back otherwise. The
	// connection is returned to the pool on every path, including panics.
	InTx(ctx context.Context, fn TxFunc) error
	// Ping verifies that the database is reachable.
	Ping(ctx context.Context) error
	// Stats returns the connection counters and pool statistics.
	Stats() Stats
}

// Stats reports pool usage. Requests and Returns count connections handed
// out and given back by the gateway; they are equal whenever no operation is
// in flight.
type Stats struct {
	Requests           uint64
	Returns            uint64
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
