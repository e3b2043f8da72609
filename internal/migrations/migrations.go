package migrations

import (
	_ "embed"

	"github.com/goran-ethernal/ThorIndexor/internal/db"
)

//go:embed 001_engine_heads.sql
var mig001 string

//go:embed 002_engine_snapshots.sql
var mig002 string

// Engine returns the migrations of the tables shared by every indexer: heads and snapshots.
func Engine() []db.Migration {
	return []db.Migration{
		{
			ID:  "001_engine_heads.sql",
			SQL: mig001,
		},
		{
			ID:  "002_engine_snapshots.sql",
			SQL: mig002,
		},
	}
}
