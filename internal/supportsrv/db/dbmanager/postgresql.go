package dbmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/tansive/supporttracker/internal/supportsrv/db/dberror"
)

// Options configures Open.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SessionParams are applied with SET on every acquired connection,
	// e.g. statement_timeout and lock_timeout.
	SessionParams  map[string]string
	ConnectRetries uint
	RetryDelay     time.Duration
}

// Pool is the PostgreSQL Gateway.
type Pool struct {
	db            *sql.DB
	sessionParams map[string]string
	paramNames    []string
	connRequests  uint64
	connReturns   uint64
}

var _ Gateway = (*Pool)(nil)

// validParamNameRegex ensures session parameter names are valid PostgreSQL identifiers
var validParamNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

// Open creates the pool and waits for the database to answer a ping,
// retrying with backoff up to opts.ConnectRetries times.
func Open(ctx context.Context, opts Options) (*Pool, error) {
	sqlDB, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to open db")
		return nil, dberror.ErrConnection.Err(err)
	}

	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	attempts := opts.ConnectRetries
	if attempts == 0 {
		attempts = 1
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	err = retry.Do(
		func() error {
			return sqlDB.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("database not reachable, retrying")
		}),
	)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to ping db")
		sqlDB.Close()
		return nil, dberror.ErrConnection.Err(err)
	}

	p, err := NewPool(sqlDB, opts.SessionParams)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return p, nil
}

// NewPool wraps an already opened database.
func NewPool(db *sql.DB, sessionParams map[string]string) (*Pool, error) {
	names := make([]string, 0, len(sessionParams))
	for name := range sessionParams {
		if !validParamNameRegex.MatchString(name) {
			return nil, fmt.Errorf("invalid session parameter name: %s", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return &Pool{
		db:            db,
		sessionParams: sessionParams,
		paramNames:    names,
	}, nil
}

// InTx implements Gateway.
func (p *Pool) InTx(ctx context.Context, fn TxFunc) error {
	conn, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.release(conn)

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to begin transaction")
		return dberror.ErrTransaction.Err(err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Ctx(ctx).Error().Err(err).Msg("failed to rollback transaction")
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to commit transaction")
		return dberror.ErrTransaction.Err(err)
	}
	done = true
	return nil
}

func (p *Pool) acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to obtain connection")
		return nil, dberror.ErrConnection.Err(err)
	}
	atomic.AddUint64(&p.connRequests, 1)

	for _, name := range p.paramNames {
		// SET does not take bind parameters, so both sides are quoted
		query := fmt.Sprintf("SET %s = %s", pq.QuoteIdentifier(name), pq.QuoteLiteral(p.sessionParams[name]))
		if _, err := conn.ExecContext(ctx, query); err != nil {
			p.release(conn)
			log.Ctx(ctx).Error().Err(err).Str("param", name).Msg("failed to set session parameter")
			return nil, dberror.ErrConnection.MsgErr("failed to set "+name, err)
		}
	}
	return conn, nil
}

func (p *Pool) release(conn *sql.Conn) {
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		log.Error().Err(err).Msg("failed to release connection")
	}
	atomic.AddUint64(&p.connReturns, 1)
}

// Ping implements Gateway.
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return dberror.ErrConnection.Err(err)
	}
	return nil
}

// Stats implements Gateway.
func (p *Pool) Stats() Stats {
	s := p.db.Stats()
	return Stats{
		Requests:           atomic.LoadUint64(&p.connRequests),
		Returns:            atomic.LoadUint64(&p.connReturns),
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration,
	}
}

// DB exposes the underlying database for schema migrations.
func (p *Pool) DB() *sql.DB {
	return p.db
}

func (p *Pool) Close() error {
	return p.db.Close()
}
