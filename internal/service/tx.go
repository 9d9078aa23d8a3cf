package service

import (
	"context"
	"fmt"

	"wallet-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// withinTx runs fn inside a transaction. It commits only when fn returns nil;
// the deferred rollback is a no-op once the transaction is committed.
func withinTx(ctx context.Context, transactor ports.DBTransactor, fn func(tx pgx.Tx) error) error {
	tx, err := transactor.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
