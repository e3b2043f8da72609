package migrations

import (
	_ "embed"

	"github.com/goran-ethernal/ThorIndexor/internal/db"
)

//go:embed 001_log.sql
var mig0001 string

// All returns the migrations of the transfers indexer tables. Table names carry
// the /*dbprefix*/ placeholder, bound per indexer instance.
func All() []db.Migration {
	return []db.Migration{
		{
			ID:  "transfers_001_log.sql",
			SQL: mig0001,
		},
	}
}
