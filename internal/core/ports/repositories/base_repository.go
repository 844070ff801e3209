package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager executes a unit of work inside an atomic storage
// transaction: commit on success, rollback on any error, both logged.
type TransactionManager interface {
	// WithTx begins a transaction, runs fn, and commits if fn returns nil.
	// Any error from fn rolls the transaction back and is returned unchanged.
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
