package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func newSnapshotDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "snapshots.db")
	database, err := NewSQLiteDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`CREATE TABLE snapshot (block_id TEXT PRIMARY KEY, payload BLOB)`)
	require.NoError(t, err)

	return database, dbPath
}

func TestNewMaintenanceCoordinator_NilConfig(t *testing.T) {
	database, dbPath := newSnapshotDB(t)

	m := NewMaintenanceCoordinator(dbPath, database, nil, logger.NewNopLogger())
	require.IsType(t, &NoOpMaintenance{}, m)
	require.NoError(t, m.Start(t.Context()))
	require.NoError(t, m.RunMaintenance(t.Context()))
	m.AcquireOperationLock()()
	require.Zero(t, m.Report().Runs)
	require.NoError(t, m.Stop())
}

func TestMaintenanceCoordinator_ReclaimsPrunedSnapshots(t *testing.T) {
	database, dbPath := newSnapshotDB(t)

	payload := make([]byte, 4096)
	tx, err := database.Begin()
	require.NoError(t, err)
	for i := range 500 {
		_, err = tx.Exec(`INSERT INTO snapshot VALUES (?, ?)`, fmt.Sprintf("0x%064x", i), payload)
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	_, err = database.Exec(`DELETE FROM snapshot`)
	require.NoError(t, err)

	m := newMaintenanceCoordinator(dbPath, database, config.MaintenanceConfig{}, logger.NewNopLogger())
	require.NoError(t, m.RunMaintenance(t.Context()))

	report := m.Report()
	require.EqualValues(t, 1, report.Runs)
	require.NoError(t, report.LastErr)
	require.False(t, report.LastRun.IsZero())
	require.Positive(t, report.Reclaimed())
	require.Less(t, report.SizeAfter, report.SizeBefore)

	require.NoError(t, m.RunMaintenance(t.Context()))
	require.EqualValues(t, 2, m.Report().Runs)
}

func TestMaintenanceCoordinator_CanceledContext(t *testing.T) {
	database, dbPath := newSnapshotDB(t)
	m := newMaintenanceCoordinator(dbPath, database, config.MaintenanceConfig{}, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.ErrorIs(t, m.RunMaintenance(ctx), context.Canceled)
	require.Zero(t, m.Report().Runs)
}

func TestMaintenanceCoordinator_StartStop(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		database, dbPath := newSnapshotDB(t)
		m := newMaintenanceCoordinator(dbPath, database, config.MaintenanceConfig{
			Enabled:           true,
			CheckInterval:     common.NewDuration(30 * time.Millisecond),
			VacuumOnStartup:   true,
			WALCheckpointMode: "PASSIVE",
		}, logger.NewNopLogger())

		require.NoError(t, m.Start(t.Context()))
		require.EqualValues(t, 1, m.Report().Runs)
		require.Eventually(t, func() bool { return m.Report().Runs > 2 }, 2*time.Second, 10*time.Millisecond)
		require.NoError(t, m.Stop())
	})

	t.Run("disabled", func(t *testing.T) {
		database, dbPath := newSnapshotDB(t)
		m := newMaintenanceCoordinator(dbPath, database, config.MaintenanceConfig{
			CheckInterval: common.NewDuration(5 * time.Millisecond),
		}, logger.NewNopLogger())

		require.NoError(t, m.Start(t.Context()))
		time.Sleep(40 * time.Millisecond)
		require.NoError(t, m.Stop())
		require.Zero(t, m.Report().Runs)
	})
}

func TestMaintenanceCoordinator_SerializesWithTransactions(t *testing.T) {
	database, dbPath := newSnapshotDB(t)
	m := newMaintenanceCoordinator(dbPath, database, config.MaintenanceConfig{WALCheckpointMode: "PASSIVE"},
		logger.NewNopLogger())

	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for w := range 10 {
		wg.Go(func() {
			for i := range 5 {
				errs <- RunInTx(t.Context(), database, m, "ledger", func(tx *sql.Tx) error {
					_, err := tx.Exec(`INSERT INTO snapshot VALUES (?, ?)`, w*100+i, []byte{byte(i)})
					return err
				})
			}
		})
	}
	wg.Go(func() {
		for range 3 {
			errs <- m.RunMaintenance(t.Context())
		}
	})

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM snapshot`).Scan(&n))
	require.Equal(t, 50, n)
	require.EqualValues(t, 3, m.Report().Runs)
}
