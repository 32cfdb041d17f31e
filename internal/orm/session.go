package orm

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TransactionOptions configures transaction behavior
type TransactionOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// DefaultTransactionOptions returns read-write, driver-default isolation.
func DefaultTransactionOptions() *TransactionOptions {
	return &TransactionOptions{
		Isolation: sql.LevelDefault,
		ReadOnly:  false,
	}
}

// ToTxOptions converts TransactionOptions to sql.TxOptions
func (o *TransactionOptions) ToTxOptions() *sql.TxOptions {
	if o == nil {
		return nil
	}
	return &sql.TxOptions{
		Isolation: o.Isolation,
		ReadOnly:  o.ReadOnly,
	}
}

// Session is the entry point for database work. It carries either the pool or
// an open transaction, plus the query middleware every repository built from
// it should run.
type Session struct {
	db         *sqlx.DB
	executor   DBExecutor
	middleware []QueryMiddleware
}

func NewSession(db *sqlx.DB, middleware ...QueryMiddleware) *Session {
	return &Session{
		db:         db,
		executor:   db,
		middleware: middleware,
	}
}

func (s *Session) withExecutor(executor DBExecutor) *Session {
	return &Session{
		db:         s.db,
		executor:   executor,
		middleware: s.middleware,
	}
}

// WithTransaction runs fn inside a transaction. Nested calls reuse the open
// transaction. The transaction is rolled back if fn errors or panics.
func (s *Session) WithTransaction(ctx context.Context, fn func(*Session) error) error {
	return s.WithTransactionOptions(ctx, nil, fn)
}

func (s *Session) WithTransactionOptions(ctx context.Context, opts *TransactionOptions, fn func(*Session) error) error {
	if s.InTransaction() {
		return fn(s)
	}

	if s.db == nil {
		return fmt.Errorf("cannot start transaction: session has no database connection")
	}

	tx, err := s.db.BeginTxx(ctx, opts.ToTxOptions())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(s.withExecutor(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *Session) InTransaction() bool {
	_, ok := s.executor.(*sqlx.Tx)
	return ok
}

// Executor returns the current database executor (pool or transaction).
func (s *Session) Executor() DBExecutor {
	return s.executor
}

func (s *Session) Middleware() []QueryMiddleware {
	return s.middleware
}

func (s *Session) DB() *sqlx.DB {
	return s.db
}

// Ping runs a trivial query through the current executor.
func (s *Session) Ping(ctx context.Context) error {
	var one int
	if err := s.executor.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return ParsePostgreSQLError(err, "ping", "")
	}
	if one != 1 {
		return fmt.Errorf("orm: unexpected ping result %d", one)
	}
	return nil
}
