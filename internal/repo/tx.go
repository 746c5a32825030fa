package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
)

// TxStarter is satisfied by *pgxpool.Pool.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InTx runs fn against a transaction-bound query set, committing on success.
// A nil starter (unit tests with stub queriers) runs fn directly against q.
func InTx(ctx context.Context, db TxStarter, q dbgen.Querier, fn func(dbgen.Querier) error) error {
	if db == nil {
		return fn(q)
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	bound := q
	if queries, ok := q.(*dbgen.Queries); ok {
		bound = queries.WithTx(tx)
	}
	if err := fn(bound); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
