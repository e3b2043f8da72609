package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"github.com/russross/meddler"
)

const snapshotTable = "snapshot"

// Snapshot is the undo information an indexer recorded for one block.
type Snapshot struct {
	BlockID     common.Hash `meddler:"block_id,hash"`
	BlockNumber uint32      `meddler:"block_number"`
	Type        string      `meddler:"type"`
	Data        string      `meddler:"data"`
}

// Decode unmarshals the snapshot payload into v.
func (s *Snapshot) Decode(v any) error {
	if err := json.Unmarshal([]byte(s.Data), v); err != nil {
		return fmt.Errorf("failed to decode %s snapshot of block %d: %w", s.Type, s.BlockNumber, err)
	}
	return nil
}

// SaveSnapshot stores the payload of a block for an indexer, replacing a previous one.
func (s *Store) SaveSnapshot(tx *sql.Tx, typ string, blockID common.Hash, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	snapshot := &Snapshot{
		BlockID:     blockID,
		BlockNumber: thor.NumberOf(blockID),
		Type:        typ,
		Data:        string(data),
	}

	if err := s.DeleteSnapshot(tx, typ, blockID); err != nil {
		return err
	}

	if err := meddler.Insert(tx, snapshotTable, snapshot); err != nil {
		return fmt.Errorf("failed to save %s snapshot of block %d: %w", typ, snapshot.BlockNumber, err)
	}

	SnapshotsSavedInc(typ)

	return nil
}

// Snapshots returns the snapshots of an indexer with from <= number <= to, oldest first.
func (s *Store) Snapshots(q meddler.DB, typ string, from, to uint32) ([]*Snapshot, error) {
	var snapshots []*Snapshot
	err := meddler.QueryAll(q, &snapshots, `
		SELECT block_id, block_number, type, data FROM snapshot
		WHERE type = ? AND block_number >= ? AND block_number <= ?
		ORDER BY block_number ASC`, typ, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s snapshots in [%d, %d]: %w", typ, from, to, err)
	}

	return snapshots, nil
}

// DeleteSnapshot removes the snapshot of one block.
func (s *Store) DeleteSnapshot(tx *sql.Tx, typ string, blockID common.Hash) error {
	if _, err := tx.Exec(`DELETE FROM snapshot WHERE type = ? AND block_id = ?`, typ, blockID.Hex()); err != nil {
		return fmt.Errorf("failed to delete %s snapshot of %s: %w", typ, blockID.Hex(), err)
	}
	return nil
}

// PruneSnapshots removes the snapshots of an indexer older than below.
func (s *Store) PruneSnapshots(q meddler.DB, typ string, below uint32) (int64, error) {
	res, err := q.Exec(`DELETE FROM snapshot WHERE type = ? AND block_number < ?`, typ, below)
	if err != nil {
		return 0, fmt.Errorf("failed to prune %s snapshots below %d: %w", typ, below, err)
	}

	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if pruned > 0 {
		SnapshotsPrunedAdd(typ, pruned)
		s.log.Debugf("pruned %d %s snapshots below block %d", pruned, typ, below)
	}

	return pruned, nil
}
