package core

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

// TransactionOption configures the sql.TxOptions a Tx call begins with.
type TransactionOption func(*sql.TxOptions)

func WithIsolationLevel(level sql.IsolationLevel) TransactionOption {
	return func(opts *sql.TxOptions) {
		opts.Isolation = level
	}
}

// WithReadOnly marks the transaction read-only. Postgres rejects any
// write issued inside it.
func WithReadOnly() TransactionOption {
	return func(opts *sql.TxOptions) {
		opts.ReadOnly = true
	}
}

// Tx runs fn inside a database transaction, committing on success and
// rolling back on error or panic.
func Tx(
	ctx context.Context,
	db *sql.DB,
	fn func(context.Context, *sql.Tx) error,
	opts ...TransactionOption,
) (err error) {
	var options sql.TxOptions
	for _, opt := range opts {
		opt(&options)
	}

	tx, err := db.BeginTx(ctx, &options)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = errors.Wrapf(err, "%v", r)
			} else {
				err = fmt.Errorf("transaction panicked with: %v", r)
			}
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%s: %w", rollbackErr.Error(), err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%s: %w", rollbackErr.Error(), err)
		}
		return err
	}

	return nil
}
