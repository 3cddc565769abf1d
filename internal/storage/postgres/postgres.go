package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"serp-market-lab/internal/storage"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// Querier is the query surface shared by *Pool and pgx.Tx. Stores are
// built over it so the same implementations serve both pooled calls
// and calls inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// NewStores builds the full store bundle over one query surface.
func NewStores(db Querier) *storage.Stores {
	return &storage.Stores{
		Keywords:     NewKeywordStore(db),
		Snapshots:    NewSnapshotStore(db),
		Products:     NewProductStore(db),
		PriceHistory: NewPriceHistoryStore(db),
		Reviews:      NewReviewStore(db),
		Sellers:      NewSellerStore(db),
		DailyMetrics: NewDailyMetricStore(db),
	}
}

// TxRunner runs store operations inside a single transaction.
type TxRunner struct {
	pool *Pool
}

// NewTxRunner creates a TxRunner over the pool.
func NewTxRunner(pool *Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Compile-time interface check.
var _ storage.TxRunner = (*TxRunner)(nil)

// RunInTx begins a transaction, hands fn a store bundle bound to it,
// and commits when fn returns nil. Any error rolls everything back, so
// a batch either lands whole or not at all.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, stores *storage.Stores) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewStores(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// PostgreSQL error codes
const (
	pgErrUniqueViolation = "23505" // unique_violation
)

// isDuplicateKeyError checks if error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	// Use pgconn.PgError for reliable error code detection
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}

	return false
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
