package indexer

import (
	"context"
	"database/sql"

	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// Indexer defines the interface that all indexers must implement.
// The processor owns heads, transactions and snapshots, an indexer only
// turns blocks into rows and undoes them from its own snapshots.
type Indexer interface {
	// Name returns the configured name of the indexer. It keys the head and the snapshots.
	Name() string

	// BornAt returns the first block the indexer is defined for, at least 1.
	// Block BornAt-1 is the genesis the indexer state is seeded from.
	BornAt(ctx context.Context) (uint32, error)

	// ProcessGenesis seeds the indexer state at block BornAt-1.
	ProcessGenesis(ctx context.Context, bc *BlockContext) error

	// ProcessBlock applies one block and returns the number of rows it inserted.
	// When bc.SaveSnapshot is set the indexer must record, through bc.Snapshot,
	// whatever it needs to undo the block.
	ProcessBlock(ctx context.Context, bc *BlockContext) (int, error)

	// Revert undoes the block a snapshot was saved for.
	Revert(ctx context.Context, tx *sql.Tx, snapshot *store.Snapshot) error
}

// Migrator is implemented by indexers owning tables.
type Migrator interface {
	Migrations() []db.Migration
}

// Flusher is implemented by indexers deciding themselves when a fast-forward batch is committed.
type Flusher interface {
	// NeedFlush reports whether count rows inserted since the last commit warrant a commit.
	NeedFlush(count int) bool
}

// BlockSkipper is implemented by indexers that can tell which blocks carry no data for them.
type BlockSkipper interface {
	// NextBlock returns the first block in [from, to] the indexer must process, or to when
	// none of them has data.
	NextBlock(ctx context.Context, from, to uint32) (uint32, error)
}

// Closer is implemented by indexers holding resources.
type Closer interface {
	Close() error
}

// SnapshotFunc stores the undo payload of the block being processed.
type SnapshotFunc func(payload any) error

// BlockContext is what an indexer gets to process one block.
type BlockContext struct {
	// Tx is the open transaction the block is applied in.
	Tx *sql.Tx
	// Block is the block being applied, with its transactions and outputs.
	Block *thor.ExpandedBlock
	// SaveSnapshot is set within the reversible window.
	SaveSnapshot bool
	// Snapshot records the undo payload of Block in Tx.
	Snapshot SnapshotFunc
	// Client reads chain state the block does not carry: traces, accounts.
	Client thor.Client
}
