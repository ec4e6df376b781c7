package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the repository. The service layer maps them to
// its own error kinds.
var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an optimistic version check fails, i.e.
	// another writer updated the row since it was read.
	ErrConflict = errors.New("concurrent update conflict")
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides database operations
type Repository struct {
	db   Querier
	root *sql.DB // nil when the repository is bound to a transaction
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, root: db}
}

// WithTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise; a
// rollback leaves no partial state behind. Calls nest: inside a transaction
// fn runs on the current one.
func (r *Repository) WithTx(ctx context.Context, fn func(*Repository) error) error {
	if r.root == nil {
		return fn(r)
	}
	tx, err := r.root.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&Repository{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
