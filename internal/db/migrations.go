package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"

	// tablePrefixPlaceholder is replaced by the table prefix of the indexer owning the migration.
	tablePrefixPlaceholder = "/*dbprefix*/"
)

// migrationSet tolerates history rows written by the other indexers sharing the database.
var migrationSet = migrate.MigrationSet{IgnoreUnknown: true}

// Migration is an embedded SQL file holding a Down section followed by an Up section.
type Migration struct {
	ID     string
	SQL    string
	Prefix string
}

// RunMigrations opens the configured database and applies every pending migration.
func RunMigrations(cfg config.DatabaseConfig, migrations []Migration) error {
	database, err := NewSQLiteDBFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer database.Close()

	return RunMigrationsDB(logger.GetDefaultLogger(), database, migrations)
}

// RunMigrationsDB applies every pending migration on an open database.
// Migrations of different indexers share one history table, their IDs carry the indexer prefix.
func RunMigrationsDB(log *logger.Logger, database *sql.DB, migrations []Migration) error {
	source, err := migrationSource(migrations)
	if err != nil {
		return err
	}

	applied, err := migrationSet.Exec(database, "sqlite3", source, migrate.Up)
	if err != nil {
		return fmt.Errorf("failed to apply migrations %s: %w", migrationIDs(source), err)
	}

	if applied > 0 {
		log.Infow("applied migrations", "count", applied, "ids", migrationIDs(source))
	} else {
		log.Debugw("schema up to date", "ids", migrationIDs(source))
	}

	return nil
}

func migrationSource(migrations []Migration) (*migrate.MemoryMigrationSource, error) {
	source := &migrate.MemoryMigrationSource{Migrations: make([]*migrate.Migration, 0, len(migrations))}

	for _, m := range migrations {
		body := strings.ReplaceAll(m.SQL, tablePrefixPlaceholder, m.Prefix)

		down, up, found := strings.Cut(body, upMarker)
		if !found {
			return nil, fmt.Errorf("migration %s has no %q section", m.ID, upMarker)
		}

		if _, afterMarker, ok := strings.Cut(down, downMarker); ok {
			down = afterMarker
		}

		source.Migrations = append(source.Migrations, &migrate.Migration{
			Id:   m.Prefix + m.ID,
			Up:   []string{strings.TrimSpace(up)},
			Down: []string{strings.TrimSpace(down)},
		})
	}

	return source, nil
}

func migrationIDs(source *migrate.MemoryMigrationSource) string {
	ids := make([]string, 0, len(source.Migrations))
	for _, m := range source.Migrations {
		ids = append(ids, m.Id)
	}
	return strings.Join(ids, ",")
}
