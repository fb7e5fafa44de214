package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxStarter is satisfied by *pgxpool.Pool and by pgxmock pools.
type TxStarter interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// WithTx runs fn in a ReadCommitted transaction.
func WithTx(ctx context.Context, starter TxStarter, fn func(pgx.Tx) error) error {
	return WithTxLevel(ctx, starter, pgx.ReadCommitted, fn)
}

// WithTxLevel runs fn at the given isolation level. Any error from fn rolls
// the transaction back and is returned unwrapped so callers can match
// sentinel errors such as a duplicate NDC.
func WithTxLevel(ctx context.Context, starter TxStarter, level pgx.TxIsoLevel, fn func(pgx.Tx) error) error {
	tx, err := starter.BeginTx(ctx, pgx.TxOptions{IsoLevel: level})
	if err != nil {
		return fmt.Errorf("platform/db: begin %s tx: %w", level, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}
	committed = true
	return nil
}
