package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/common"
)

var (
	journalModes    = []string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}
	syncModes       = []string{"FULL", "NORMAL", "OFF"}
	checkpointModes = []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
)

// DatabaseConfig configures the SQLite file holding indexer tables, heads and snapshots.
type DatabaseConfig struct {
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode defaults to WAL so that the API can read while indexers write.
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is in milliseconds.
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize follows PRAGMA cache_size: positive counts pages, negative counts KiB.
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	MaxOpenConnections int  `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`
	MaxIdleConnections int  `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`
	EnableForeignKeys  bool `yaml:"enable_foreign_keys" json:"enable_foreign_keys" toml:"enable_foreign_keys"`
}

func (d *DatabaseConfig) ApplyDefaults() {
	d.JournalMode = strings.ToUpper(d.JournalMode)
	d.Synchronous = strings.ToUpper(d.Synchronous)

	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
}

func (d *DatabaseConfig) Validate() error {
	switch {
	case d.Path == "":
		return errors.New("db.path is required")
	case !slices.Contains(journalModes, d.JournalMode):
		return fmt.Errorf("db.journal_mode must be one of: %s", strings.Join(journalModes, ", "))
	case !slices.Contains(syncModes, d.Synchronous):
		return fmt.Errorf("db.synchronous must be one of: %s", strings.Join(syncModes, ", "))
	}
	return nil
}

// MaintenanceConfig schedules vacuum and WAL checkpoints of the database.
type MaintenanceConfig struct {
	Enabled       bool            `yaml:"enabled" json:"enabled" toml:"enabled"`
	CheckInterval common.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// VacuumOnStartup runs one pass before indexing starts.
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`

	// WALCheckpointMode is one of PASSIVE, FULL, RESTART or TRUNCATE.
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = common.NewDuration(30 * time.Minute)
	}
	m.WALCheckpointMode = strings.ToUpper(m.WALCheckpointMode)
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" && !slices.Contains(checkpointModes, m.WALCheckpointMode) {
		return fmt.Errorf("maintenance.wal_checkpoint_mode must be one of: %s", strings.Join(checkpointModes, ", "))
	}
	if m.Enabled && m.CheckInterval.Duration <= 0 {
		return errors.New("maintenance.check_interval must be positive")
	}
	return nil
}
