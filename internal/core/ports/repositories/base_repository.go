package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager is implemented by repositories that run multi-statement
// writes, such as locking a budget version together with its budget.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback is a no-op on a committed transaction.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
