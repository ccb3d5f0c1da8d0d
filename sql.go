package authform

import (
	"context"
	"database/sql"
)

// Executor interface abstracts database operations.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) error
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Scanner
}

// Scanner interface abstracts scanning a row.
type Scanner interface {
	Scan(dest ...any) error
}

// Rows interface abstracts scanning multiple rows.
type Rows interface {
	Scan(dest ...any) error
	Next() bool
	Close() error
	Err() error
}

// DBExecutor adapts a *sql.DB to Executor.
type DBExecutor struct {
	*sql.DB
}

func NewDBExecutor(db *sql.DB) *DBExecutor {
	return &DBExecutor{DB: db}
}

func (e *DBExecutor) Exec(ctx context.Context, query string, args ...any) error {
	_, err := e.DB.ExecContext(ctx, query, args...)
	return err
}

func (e *DBExecutor) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return e.DB.QueryContext(ctx, query, args...)
}

func (e *DBExecutor) QueryRow(ctx context.Context, query string, args ...any) Scanner {
	return e.DB.QueryRowContext(ctx, query, args...)
}
