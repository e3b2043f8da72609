// Package db opens the SQLite database shared by the engine and every indexer and keeps
// it healthy: migrations, transactions, vacuum and WAL checkpoints.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"

	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB opens dbPath with the default database settings.
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	cfg := config.DatabaseConfig{Path: dbPath}
	cfg.ApplyDefaults()
	return NewSQLiteDBFromConfig(cfg)
}

// dsn turns cfg into go-sqlite3 connection parameters. _txlock=immediate takes the write
// lock at BEGIN, so concurrent writers queue on busy_timeout instead of failing on upgrade.
func dsn(cfg config.DatabaseConfig) string {
	q := url.Values{}
	q.Set("_txlock", "immediate")
	q.Set("_journal_mode", cfg.JournalMode)
	q.Set("_busy_timeout", strconv.Itoa(cfg.BusyTimeout))
	q.Set("_foreign_keys", strconv.FormatBool(cfg.EnableForeignKeys))
	q.Set("_synchronous", cfg.Synchronous)
	q.Set("_cache_size", strconv.Itoa(cfg.CacheSize))
	return "file:" + cfg.Path + "?" + q.Encode()
}

func NewSQLiteDBFromConfig(cfg config.DatabaseConfig) (*sql.DB, error) {
	database, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}

	database.SetMaxOpenConns(cfg.MaxOpenConnections)
	database.SetMaxIdleConns(cfg.MaxIdleConnections)

	// sql.Open is lazy, an unusable path only fails on the first connection.
	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}

	return database, nil
}

// Vacuum rebuilds the database file, returning the pages freed by deletes to the OS.
func Vacuum(database *sql.DB) error {
	if _, err := database.Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// DBTotalSize sums the database file and its -wal and -shm companions. Missing files count as zero.
func DBTotalSize(dbPath string) (int64, error) {
	var total int64
	for _, suffix := range []string{"", "-wal", "-shm"} {
		info, err := os.Stat(dbPath + suffix)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return 0, fmt.Errorf("stat %s: %w", dbPath+suffix, err)
		default:
			total += info.Size()
		}
	}
	return total, nil
}
