package store

import (
	"database/sql"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/testutil"
	"github.com/stretchr/testify/require"
)

func blockID(number uint32, salt byte) common.Hash {
	var id common.Hash
	id[0], id[1], id[2], id[3] = byte(number>>24), byte(number>>16), byte(number>>8), byte(number)
	id[31] = salt
	return id
}

func inTx(t *testing.T, database *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	tx, err := database.Begin()
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

type payload struct {
	Balance string `json:"balance"`
}

func TestHeads(t *testing.T) {
	database := testutil.NewTestDB(t)
	s := New(database, logger.NewNopLogger())

	_, ok, err := s.Head(database, "ledger")
	require.NoError(t, err)
	require.False(t, ok)

	inTx(t, database, func(tx *sql.Tx) {
		require.NoError(t, s.SaveHead(tx, "ledger", blockID(10, 1)))
		require.NoError(t, s.SaveHead(tx, "transfers", blockID(7, 1)))
		require.NoError(t, s.SaveHead(tx, "ledger", blockID(11, 1)))
	})

	head, ok, err := s.Head(database, "ledger")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, blockID(11, 1), head)

	heads, err := s.Heads()
	require.NoError(t, err)
	require.Equal(t, map[string]common.Hash{
		"ledger":    blockID(11, 1),
		"transfers": blockID(7, 1),
	}, heads)
}

func TestHeads_RolledBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	s := New(database, logger.NewNopLogger())

	tx, err := database.Begin()
	require.NoError(t, err)
	require.NoError(t, s.SaveHead(tx, "ledger", blockID(3, 1)))
	require.NoError(t, tx.Rollback())

	_, ok, err := s.Head(database, "ledger")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshots(t *testing.T) {
	database := testutil.NewTestDB(t)
	s := New(database, logger.NewNopLogger())

	inTx(t, database, func(tx *sql.Tx) {
		for n := uint32(1); n <= 5; n++ {
			require.NoError(t, s.SaveSnapshot(tx, "ledger", blockID(n, 1), payload{Balance: "1"}))
		}
		require.NoError(t, s.SaveSnapshot(tx, "transfers", blockID(3, 1), []string{"x"}))
		// same block again replaces the payload
		require.NoError(t, s.SaveSnapshot(tx, "ledger", blockID(5, 1), payload{Balance: "2"}))
	})

	snapshots, err := s.Snapshots(database, "ledger", 2, 5)
	require.NoError(t, err)
	require.Len(t, snapshots, 4)
	for i, snap := range snapshots {
		require.Equal(t, uint32(i+2), snap.BlockNumber)
		require.Equal(t, "ledger", snap.Type)
	}

	var p payload
	require.NoError(t, snapshots[3].Decode(&p))
	require.Equal(t, "2", p.Balance)

	inTx(t, database, func(tx *sql.Tx) {
		require.NoError(t, s.DeleteSnapshot(tx, "ledger", blockID(5, 1)))
	})

	pruned, err := s.PruneSnapshots(database, "ledger", 3)
	require.NoError(t, err)
	require.Equal(t, int64(2), pruned)

	snapshots, err = s.Snapshots(database, "ledger", 0, 100)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	require.Equal(t, blockID(3, 1), snapshots[0].BlockID)
	require.Equal(t, blockID(4, 1), snapshots[1].BlockID)

	// other indexers are untouched
	others, err := s.Snapshots(database, "transfers", 0, 100)
	require.NoError(t, err)
	require.Len(t, others, 1)
}

func TestSnapshot_DecodeError(t *testing.T) {
	snap := &Snapshot{Type: "ledger", BlockNumber: 1, Data: "{"}
	require.Error(t, snap.Decode(&payload{}))
}
