package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
)

// Maintenance keeps the shared SQLite file compact while indexers write to it.
// Engine transactions take the operation lock in shared mode, a maintenance pass takes it exclusively.
type Maintenance interface {
	Start(ctx context.Context) error
	Stop() error
	// AcquireOperationLock blocks while a maintenance pass runs and returns the release function.
	AcquireOperationLock() func()
	RunMaintenance(ctx context.Context) error
	Report() MaintenanceReport
}

// MaintenanceReport describes the last maintenance pass.
type MaintenanceReport struct {
	Runs       uint64
	LastRun    time.Time
	LastErr    error
	SizeBefore int64
	SizeAfter  int64
	// BusyPages is the number of WAL frames the last checkpoint could not copy back.
	BusyPages int
}

// Reclaimed returns the bytes freed by the last pass.
func (r MaintenanceReport) Reclaimed() int64 {
	if r.SizeBefore > r.SizeAfter {
		return r.SizeBefore - r.SizeAfter
	}
	return 0
}

// NoOpMaintenance runs nothing and never blocks transactions.
type NoOpMaintenance struct{}

func (*NoOpMaintenance) Start(context.Context) error          { return nil }
func (*NoOpMaintenance) Stop() error                          { return nil }
func (*NoOpMaintenance) AcquireOperationLock() func()         { return func() {} }
func (*NoOpMaintenance) RunMaintenance(context.Context) error { return nil }
func (*NoOpMaintenance) Report() MaintenanceReport            { return MaintenanceReport{} }

// MaintenanceCoordinator vacuums the database, checkpoints the WAL and refreshes planner
// statistics on a fixed interval. Snapshot pruning and rollbacks delete many rows, so the file grows without it.
type MaintenanceCoordinator struct {
	db     *sql.DB
	dbPath string
	cfg    config.MaintenanceConfig
	log    *logger.Logger

	opLock sync.RWMutex

	cancel context.CancelFunc
	wg     sync.WaitGroup

	reportMu sync.Mutex
	report   MaintenanceReport
}

// NewMaintenanceCoordinator returns a NoOpMaintenance when cfg is nil.
func NewMaintenanceCoordinator(dbPath string, db *sql.DB, cfg *config.MaintenanceConfig,
	log *logger.Logger) Maintenance {
	if cfg == nil {
		return &NoOpMaintenance{}
	}

	return newMaintenanceCoordinator(dbPath, db, *cfg, log)
}

func newMaintenanceCoordinator(dbPath string, db *sql.DB, cfg config.MaintenanceConfig,
	log *logger.Logger) *MaintenanceCoordinator {
	cfg.ApplyDefaults()

	return &MaintenanceCoordinator{
		db:     db,
		dbPath: dbPath,
		cfg:    cfg,
		log:    log.WithComponent(common.ComponentMaintenance),
	}
}

// Start runs the startup pass when configured and launches the periodic loop.
func (m *MaintenanceCoordinator) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		m.log.Info("database maintenance disabled")
		return nil
	}

	ctx, m.cancel = context.WithCancel(ctx)

	if m.cfg.VacuumOnStartup {
		if err := m.RunMaintenance(ctx); err != nil {
			m.log.Warnw("startup maintenance failed", "error", err)
		}
	}

	m.wg.Add(1)
	go m.loop(ctx)

	m.log.Infow("database maintenance started",
		"interval", m.cfg.CheckInterval.Duration, "checkpoint_mode", m.cfg.WALCheckpointMode)

	return nil
}

// Stop cancels the loop and waits for an in-flight pass.
func (m *MaintenanceCoordinator) Stop() error {
	if m.cancel == nil {
		return nil
	}

	m.cancel()
	m.wg.Wait()
	m.log.Info("database maintenance stopped")

	return nil
}

func (m *MaintenanceCoordinator) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.CheckInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.RunMaintenance(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.log.Warnw("periodic maintenance failed", "error", err)
			}
		}
	}
}

// RunMaintenance performs one pass. It waits for running transactions to finish and
// blocks new ones until done.
func (m *MaintenanceCoordinator) RunMaintenance(ctx context.Context) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	pass := MaintenanceReport{LastRun: start.UTC()}

	if size, err := DBTotalSize(m.dbPath); err == nil {
		pass.SizeBefore = size
	}

	// VACUUM rewrites every page into the WAL, the checkpoint after it shrinks both files.
	var errs []error
	if err := m.vacuum(ctx); err != nil {
		errs = append(errs, err)
	}

	busy, err := m.checkpoint(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("WAL checkpoint failed: %w", err))
	}
	pass.BusyPages = busy

	if _, err := m.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		errs = append(errs, fmt.Errorf("optimize failed: %w", err))
	}

	if size, err := DBTotalSize(m.dbPath); err == nil {
		pass.SizeAfter = size
	}
	pass.LastErr = errors.Join(errs...)

	m.reportMu.Lock()
	pass.Runs = m.report.Runs + 1
	m.report = pass
	m.reportMu.Unlock()

	observeMaintenance(pass, time.Since(start))

	if pass.LastErr != nil {
		m.log.Warnw("maintenance finished with errors", "duration", time.Since(start), "error", pass.LastErr)
		return pass.LastErr
	}

	m.log.Infow("maintenance finished",
		"duration", time.Since(start),
		"size_mb", common.BytesToMB(uint64(pass.SizeAfter)),
		"reclaimed_mb", common.BytesToMB(uint64(pass.Reclaimed())),
		"busy_pages", pass.BusyPages)

	return nil
}

// checkpoint copies WAL frames back into the main file. Non-WAL databases are skipped.
func (m *MaintenanceCoordinator) checkpoint(ctx context.Context) (int, error) {
	var mode string
	if err := m.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		return 0, fmt.Errorf("failed to read journal mode: %w", err)
	}
	if !strings.EqualFold(mode, "wal") {
		return 0, nil
	}

	var busy, frames, copied int
	query := fmt.Sprintf("PRAGMA wal_checkpoint(%s)", m.cfg.WALCheckpointMode)
	if err := m.db.QueryRowContext(ctx, query).Scan(&busy, &frames, &copied); err != nil {
		return 0, err
	}

	walCheckpoints.WithLabelValues(strings.ToLower(m.cfg.WALCheckpointMode)).Inc()
	m.log.Debugw("WAL checkpoint", "mode", m.cfg.WALCheckpointMode, "frames", frames, "copied", copied)

	return busy, nil
}

func (m *MaintenanceCoordinator) vacuum(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}

	return nil
}

// AcquireOperationLock takes the shared side of the operation lock.
func (m *MaintenanceCoordinator) AcquireOperationLock() func() {
	m.opLock.RLock()
	return m.opLock.RUnlock
}

// Report returns the outcome of the last pass.
func (m *MaintenanceCoordinator) Report() MaintenanceReport {
	m.reportMu.Lock()
	defer m.reportMu.Unlock()

	return m.report
}
