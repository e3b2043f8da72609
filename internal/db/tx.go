package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Rollback rolls the transaction back, ignoring the error of an already finished transaction.
func Rollback(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

// RunInTx runs fn inside a single transaction while holding the maintenance operation lock.
// The transaction is committed when fn returns nil and rolled back otherwise.
// owner labels the transaction duration metric.
func RunInTx(ctx context.Context, database *sql.DB, maintenance Maintenance, owner string,
	fn func(tx *sql.Tx) error) (err error) {
	if maintenance == nil {
		maintenance = &NoOpMaintenance{}
	}

	unlock := maintenance.AcquireOperationLock()
	defer unlock()

	start := time.Now()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		status := "committed"
		if err != nil {
			status = "rolled_back"
			if rbErr := Rollback(tx); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
			}
		}
		TxDurationLog(owner, status, time.Since(start))
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
