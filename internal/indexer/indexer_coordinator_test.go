package indexer

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	internalcommon "github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/processor"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/internal/testutil"
	"github.com/goran-ethernal/ThorIndexor/internal/watcher"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/stretchr/testify/require"
)

const blockTestType = "test-blocks"

const blockMigration = `-- +migrate Down
DROP TABLE IF EXISTS /*dbprefix*/block;

-- +migrate Up
CREATE TABLE IF NOT EXISTS /*dbprefix*/block (
    block_number INTEGER PRIMARY KEY,
    block_id     TEXT NOT NULL
);`

// failAt makes the named test indexers fail with a consistency error at a height.
var failAt sync.Map

func init() {
	indexer.Register(blockTestType, func(cfg config.IndexerConfig, env indexer.Env, log *logger.Logger,
	) (indexer.Indexer, error) {
		return &blockIndexer{BaseIndexer: NewBaseIndexer(env.DB, log, cfg)}, nil
	})
}

// blockIndexer records the id of every applied block.
type blockIndexer struct {
	*BaseIndexer
}

func (b *blockIndexer) Migrations() []db.Migration {
	return b.PrefixMigrations([]db.Migration{{ID: "block.sql", SQL: blockMigration}})
}

func (b *blockIndexer) BornAt(context.Context) (uint32, error) { return 1, nil }

func (b *blockIndexer) ProcessGenesis(context.Context, *indexer.BlockContext) error { return nil }

func (b *blockIndexer) ProcessBlock(ctx context.Context, bc *indexer.BlockContext) (int, error) {
	if n, ok := failAt.Load(b.Name()); ok && n.(uint32) == bc.Block.Number {
		return 0, indexer.NewConsistencyError(bc.Block.Number, bc.Block.ID, bc.Block.ID, "forced failure")
	}

	_, err := bc.Tx.ExecContext(ctx, "INSERT INTO "+b.Table("block")+" (block_number, block_id) VALUES (?, ?)",
		bc.Block.Number, bc.Block.ID.Hex())
	if err != nil {
		return 0, err
	}

	return 1, bc.Snapshot(struct{}{})
}

func (b *blockIndexer) Revert(ctx context.Context, tx *sql.Tx, snapshot *store.Snapshot) error {
	_, err := b.DeleteBlock(ctx, tx, b.Table("block"), snapshot.BlockID)
	return err
}

func (b *blockIndexer) count(t *testing.T) int {
	t.Helper()

	var n int
	require.NoError(t, b.DB.QueryRow("SELECT COUNT(*) FROM "+b.Table("block")).Scan(&n))
	return n
}

func testDeps(t *testing.T, chain *testutil.Chain) Dependencies {
	t.Helper()

	return Dependencies{
		Engine: config.EngineConfig{
			ReversibleWindow: 5,
			SamplingInterval: internalcommon.NewDuration(5 * time.Millisecond),
		},
		DB:     testutil.NewTestDB(t),
		Client: chain,
	}
}

func TestIndexerCoordinator_AddIndexers(t *testing.T) {
	chain := testutil.NewChain(1000)
	log := logger.NewNopLogger()

	tests := []struct {
		name     string
		cfgs     []config.IndexerConfig
		errorMsg string
	}{
		{
			name:     "missing type",
			cfgs:     []config.IndexerConfig{{Name: "a"}},
			errorMsg: "missing 'type' field",
		},
		{
			name:     "unknown type",
			cfgs:     []config.IndexerConfig{{Name: "a", Type: "nope"}},
			errorMsg: "unknown indexer type",
		},
		{
			name: "duplicate name",
			cfgs: []config.IndexerConfig{
				{Name: "a", Type: blockTestType},
				{Name: "a", Type: blockTestType},
			},
			errorMsg: `duplicate indexer name "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic := NewIndexerCoordinator(log)
			err := ic.AddIndexers(tt.cfgs, testDeps(t, chain), log)
			require.ErrorContains(t, err, tt.errorMsg)
		})
	}

	ic := NewIndexerCoordinator(log)
	require.Error(t, ic.AddIndexers(nil, Dependencies{}, log))

	deps := testDeps(t, chain)
	require.NoError(t, ic.AddIndexers([]config.IndexerConfig{
		{Name: "first", Type: blockTestType},
		{Name: "Second", Type: blockTestType},
	}, deps, log))

	processors := ic.Processors()
	require.Len(t, processors, 2)
	require.Equal(t, "first", processors[0].Name())
	require.Equal(t, "Second", processors[1].Name())

	p, ok := ic.Processor("Second")
	require.True(t, ok)
	require.IsType(t, &blockIndexer{}, p.Indexer())

	_, ok = ic.Processor("third")
	require.False(t, ok)

	// the tables of both indexers were migrated
	for _, table := range []string{"first_block", "second_block"} {
		_, err := deps.DB.Exec("SELECT COUNT(*) FROM " + table)
		require.NoError(t, err)
	}
}

func TestIndexerCoordinator_Run(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.ExtendN(4)
	log := logger.NewNopLogger()

	deps := testDeps(t, chain)
	ic := NewIndexerCoordinator(log)
	require.NoError(t, ic.AddIndexers([]config.IndexerConfig{
		{Name: "one", Type: blockTestType},
		{Name: "two", Type: blockTestType},
	}, deps, log))

	w, err := watcher.New(chain, chain.Lookup, watcher.Options{Window: 5, SamplingInterval: 5 * time.Millisecond}, log)
	require.NoError(t, err)
	ic.SetWatcher(w)
	require.Same(t, w, ic.Watcher())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- ic.Run(ctx) }()

	require.Eventually(t, func() bool {
		for _, s := range ic.Statuses() {
			if s.HeadNumber != 4 {
				return false
			}
		}
		head := w.Head()
		return head != nil && head.Number == 4
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, ic.Close())

	for _, p := range ic.Processors() {
		require.Equal(t, 4, p.Indexer().(*blockIndexer).count(t))
	}

	heads, err := store.New(deps.DB, log).Heads()
	require.NoError(t, err)
	require.Equal(t, chain.ID(4), heads["one"])
	require.Equal(t, chain.ID(4), heads["two"])
}

func TestIndexerCoordinator_FatalErrorStopsAll(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.ExtendN(4)
	log := logger.NewNopLogger()

	failAt.Store("broken", uint32(3))
	t.Cleanup(func() { failAt.Delete("broken") })

	ic := NewIndexerCoordinator(log)
	require.NoError(t, ic.AddIndexers([]config.IndexerConfig{
		{Name: "healthy", Type: blockTestType},
		{Name: "broken", Type: blockTestType},
	}, testDeps(t, chain), log))

	done := make(chan error, 1)
	go func() { done <- ic.Run(t.Context()) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, indexer.ErrConsistency)
		require.ErrorContains(t, err, "indexer broken")
		require.True(t, processor.IsFatal(err))
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}

	broken, ok := ic.Processor("broken")
	require.True(t, ok)
	require.Equal(t, 0, broken.Indexer().(*blockIndexer).count(t))
	require.NotEmpty(t, broken.Status().LastError)

	healthy, ok := ic.Processor("healthy")
	require.True(t, ok)
	<-healthy.Done()
}

func TestIndexerCoordinator_RunWithoutIndexers(t *testing.T) {
	ic := NewIndexerCoordinator(logger.NewNopLogger())
	err := ic.Run(t.Context())
	require.Error(t, err)
	require.False(t, errors.Is(err, context.Canceled))
}
