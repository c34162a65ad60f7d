package store

import (
	"context"
	"database/sql"
)

// TxRunner runs a function inside a single database transaction. Services
// depend on this seam rather than on *sql.DB directly so tests can supply a
// pass-through runner.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn TxFn) error
}

// SQLTxRunner is the production TxRunner backed by a *sql.DB.
type SQLTxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner for the given database handle.
func NewTxRunner(db *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{db: db}
}

// RunInTransaction implements TxRunner.
func (r *SQLTxRunner) RunInTransaction(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, r.db, fn)
}
