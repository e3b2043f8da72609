package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/migrations"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a temporary SQLite database with the engine tables and the given extra migrations.
func NewTestDB(t *testing.T, extra ...db.Migration) *sql.DB {
	t.Helper()

	dbConfig := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")}
	dbConfig.ApplyDefaults()

	require.NoError(t, db.RunMigrations(dbConfig, append(migrations.Engine(), extra...)))

	database, err := db.NewSQLiteDBFromConfig(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return database
}
