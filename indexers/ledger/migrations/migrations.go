package migrations

import (
	_ "embed"

	"github.com/goran-ethernal/ThorIndexor/internal/db"
)

//go:embed 001_account.sql
var mig0001 string

// All returns the migrations of the ledger tables.
func All() []db.Migration {
	return []db.Migration{
		{
			ID:  "ledger_001_account.sql",
			SQL: mig0001,
		},
	}
}
