package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/russross/meddler"
	"github.com/stretchr/testify/require"
)

func newFilledDB(t *testing.T, journal string) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "thor.db")
	cfg := config.DatabaseConfig{Path: dbPath, JournalMode: journal}
	cfg.ApplyDefaults()

	database, err := NewSQLiteDBFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`CREATE TABLE clause (id INTEGER PRIMARY KEY, data TEXT)`)
	require.NoError(t, err)

	tx, err := database.Begin()
	require.NoError(t, err)
	for i := range 2000 {
		_, err = tx.Exec(`INSERT INTO clause (data) VALUES (?)`, fmt.Sprintf("0x%064x", i))
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	_, err = database.Exec(`DELETE FROM clause WHERE id % 2 = 0`)
	require.NoError(t, err)

	return database, dbPath
}

func TestNewSQLiteDBFromConfig(t *testing.T) {
	database, _ := newFilledDB(t, "WAL")

	var mode string
	require.NoError(t, database.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	require.Equal(t, "wal", strings.ToLower(mode))

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM clause`).Scan(&n))
	require.Equal(t, 1000, n)

	_, err := NewSQLiteDB(filepath.Join(t.TempDir(), "missing", "dir", "thor.db"))
	require.Error(t, err)
}

func TestVacuum(t *testing.T) {
	for _, journal := range []string{"WAL", "TRUNCATE"} {
		t.Run(journal, func(t *testing.T) {
			database, dbPath := newFilledDB(t, journal)

			before, err := DBTotalSize(dbPath)
			require.NoError(t, err)

			require.NoError(t, Vacuum(database))

			after, err := DBTotalSize(dbPath)
			require.NoError(t, err)
			require.LessOrEqual(t, after, before)
		})
	}
}

func TestDBTotalSize(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "thor.db")

	size, err := DBTotalSize(main)
	require.NoError(t, err)
	require.Zero(t, size)

	require.NoError(t, os.WriteFile(main, []byte("main"), 0o600))
	size, err = DBTotalSize(main)
	require.NoError(t, err)
	require.EqualValues(t, 4, size)

	require.NoError(t, os.WriteFile(main+"-wal", []byte("wal-pages"), 0o600))
	require.NoError(t, os.WriteFile(main+"-shm", []byte("shm"), 0o600))
	size, err = DBTotalSize(main)
	require.NoError(t, err)
	require.EqualValues(t, 4+9+3, size)
}

type headRow struct {
	Key     string          `meddler:"key,pk"`
	BlockID common.Hash     `meddler:"block_id,hash"`
	Parent  *common.Hash    `meddler:"parent_id,hash"`
	Signer  common.Address  `meddler:"signer,address"`
	Payer   *common.Address `meddler:"payer,address"`
}

func TestHexMeddler(t *testing.T) {
	database, err := NewSQLiteDB(filepath.Join(t.TempDir(), "hex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`CREATE TABLE head (key TEXT PRIMARY KEY, block_id TEXT, parent_id TEXT,
		signer TEXT, payer TEXT)`)
	require.NoError(t, err)

	parent := common.HexToHash("0x0000000900000000000000000000000000000000000000000000000000000abc")
	payer := common.HexToAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")

	full := &headRow{
		Key:     "full",
		BlockID: common.HexToHash("0x0000000a00000000000000000000000000000000000000000000000000000def"),
		Parent:  &parent,
		Signer:  common.HexToAddress("0x0000000000000000000000000000456e65726779"),
		Payer:   &payer,
	}
	require.NoError(t, meddler.Insert(database, "head", full))
	_, err = database.Exec(`INSERT INTO head (key) VALUES ('empty')`)
	require.NoError(t, err)

	var got headRow
	require.NoError(t, meddler.QueryRow(database, &got, `SELECT * FROM head WHERE key = 'full'`))
	require.Equal(t, *full, got)

	var raw string
	require.NoError(t, database.QueryRow(`SELECT block_id FROM head WHERE key = 'full'`).Scan(&raw))
	require.Equal(t, full.BlockID.Hex(), raw)

	got = headRow{Parent: &parent, Payer: &payer}
	require.NoError(t, meddler.QueryRow(database, &got, `SELECT * FROM head WHERE key = 'empty'`))
	require.Equal(t, headRow{Key: "empty"}, got)
}
