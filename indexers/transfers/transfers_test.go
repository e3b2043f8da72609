package transfers

import (
	"context"
	"database/sql"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/processor"
	"github.com/goran-ethernal/ThorIndexor/internal/reconcile"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/internal/testutil"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"github.com/stretchr/testify/require"
)

var (
	origin   = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	contract = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	other    = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	topic    = common.HexToHash("0x01")
)

func amount(v int64) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(v))
}

// payTx is a single clause paying contract, which logs an event on receipt.
func payTx(id byte, v int64) *thor.Transaction {
	return &thor.Transaction{
		ID:     common.Hash{id},
		Origin: origin,
		Outputs: []thor.Output{{
			Events:    []thor.Event{{Address: contract, Topics: []common.Hash{topic}, Data: []byte{id}}},
			Transfers: []thor.Transfer{{Sender: origin, Recipient: contract, Amount: amount(v)}},
		}},
	}
}

func payTrace(v int64) *thor.CallTrace {
	return &thor.CallTrace{Type: thor.CallTypeCall, From: origin, To: contract, Value: amount(v)}
}

func newTestIndexer(t *testing.T, chain *testutil.Chain, cfg config.IndexerConfig) (*Indexer, *sql.DB) {
	t.Helper()

	if cfg.Name == "" {
		cfg.Name = "pay-log"
	}
	cfg.Type = Type
	cfg.ApplyDefaults()

	idx, err := New(cfg, nil, chain, logger.NewNopLogger())
	require.NoError(t, err)

	database := testutil.NewTestDB(t, idx.Migrations()...)
	idx.DB = database

	return idx, database
}

// apply processes the trunk block n with snapshots, the way the steady state does.
func apply(t *testing.T, idx *Indexer, database *sql.DB, chain *testutil.Chain, n uint32) (int, error) {
	t.Helper()

	block, err := chain.GetExpandedBlock(t.Context(), thor.RevisionNumber(n))
	require.NoError(t, err)

	st := store.New(database, logger.NewNopLogger())

	var inserted int
	err = db.RunInTx(t.Context(), database, nil, idx.Name(), func(tx *sql.Tx) error {
		var err error
		inserted, err = idx.ProcessBlock(t.Context(), &indexer.BlockContext{
			Tx:           tx,
			Block:        block,
			SaveSnapshot: true,
			Snapshot: func(payload any) error {
				return st.SaveSnapshot(tx, idx.Name(), block.ID, payload)
			},
			Client: chain,
		})
		return err
	})

	return inserted, err
}

func queryAll(t *testing.T, idx *Indexer) []*indexer.LogEntry {
	t.Helper()

	params := indexer.NewDefaultQueryParams()
	params.SortOrder = "asc"

	entries, total, err := idx.QueryLogs(t.Context(), params)
	require.NoError(t, err)
	require.Len(t, entries, total)

	return entries
}

func TestTablePrefix(t *testing.T) {
	idx, _ := newTestIndexer(t, testutil.NewChain(0), config.IndexerConfig{Name: "Pay-Log.v2"})
	require.Equal(t, "pay_log_v2_log", idx.table)
}

func TestNew_InvalidContract(t *testing.T) {
	_, err := New(config.IndexerConfig{Name: "x", Contracts: []string{"0x12"}}, nil, testutil.NewChain(0),
		logger.NewNopLogger())
	require.ErrorContains(t, err, "invalid contract address")

	_, err = New(config.IndexerConfig{Name: "x"}, nil, nil, logger.NewNopLogger())
	require.Error(t, err)
}

func TestProcessBlock_TraceOrder(t *testing.T) {
	chain := testutil.NewChain(1000)
	id := chain.Extend(payTx(1, 5))
	chain.SetTrace(id, 0, 0, payTrace(5))

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{Contracts: []string{contract.Hex()}})

	inserted, err := apply(t, idx, database, chain, 1)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	entries := queryAll(t, idx)
	require.Len(t, entries, 2)

	// the payment precedes the event it triggers
	require.Equal(t, "transfer", entries[0].Kind)
	require.EqualValues(t, 0, entries[0].LogIndex)
	require.Equal(t, origin.Hex(), *entries[0].Sender)
	require.Equal(t, "5", *entries[0].Amount)
	require.Equal(t, "event", entries[1].Kind)
	require.EqualValues(t, 1, entries[1].LogIndex)
	require.Equal(t, contract.Hex(), *entries[1].Address)
	require.Equal(t, topic.Hex(), *entries[1].Topics)
	require.Equal(t, "0x01", *entries[1].Data)

	snapshots, err := store.New(database, logger.NewNopLogger()).Snapshots(database, idx.Name(), 0, 10)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, id, snapshots[0].BlockID)
}

func TestProcessBlock_FallbackToArrayOrder(t *testing.T) {
	chain := testutil.NewChain(1000)
	id := chain.Extend(payTx(1, 5))
	// the trace claims a different amount
	chain.SetTrace(id, 0, 0, payTrace(7))

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{})

	inserted, err := apply(t, idx, database, chain, 1)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	entries := queryAll(t, idx)
	require.Equal(t, "event", entries[0].Kind)
	require.Equal(t, "transfer", entries[1].Kind)
}

func TestProcessBlock_ManyTracedClauses(t *testing.T) {
	chain := testutil.NewChain(1000)

	const n = 3 * traceConcurrency
	txs := make([]*thor.Transaction, n)
	for i := range txs {
		txs[i] = payTx(byte(i+1), int64(i+1))
	}
	id := chain.Extend(txs...)
	for i := range txs {
		chain.SetTrace(id, i, 0, payTrace(int64(i+1)))
	}

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{Contracts: []string{contract.Hex()}})

	inserted, err := apply(t, idx, database, chain, 1)
	require.NoError(t, err)
	require.Equal(t, 2*n, inserted)

	entries := queryAll(t, idx)
	for i, e := range entries {
		want := "transfer"
		if i%2 == 1 {
			want = "event"
		}
		require.Equal(t, want, e.Kind, "entry %d", i)
	}
}

func TestProcessBlock_StrictOrder(t *testing.T) {
	chain := testutil.NewChain(1000)
	id := chain.Extend(payTx(1, 5))
	chain.SetTrace(id, 0, 0, payTrace(7))

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{StrictOrder: true})

	_, err := apply(t, idx, database, chain, 1)
	require.ErrorIs(t, err, reconcile.ErrInconsistent)
	require.True(t, processor.IsFatal(err))
	require.Empty(t, queryAll(t, idx))
}

func TestProcessBlock_TraceUnavailable(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.Extend(payTx(1, 5))

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{})

	_, err := apply(t, idx, database, chain, 1)
	require.Error(t, err)
	require.False(t, processor.IsFatal(err))
}

func TestProcessBlock_ContractFilter(t *testing.T) {
	chain := testutil.NewChain(1000)

	tx := &thor.Transaction{
		ID:     common.Hash{9},
		Origin: origin,
		Outputs: []thor.Output{
			{Events: []thor.Event{{Address: other, Topics: []common.Hash{topic}}}},
			{
				Events: []thor.Event{
					{Address: other, Topics: []common.Hash{topic}},
					{Address: contract, Topics: []common.Hash{topic}},
				},
			},
			{Transfers: []thor.Transfer{{Sender: contract, Recipient: origin, Amount: amount(3)}}},
		},
	}
	chain.Extend(tx)

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{Contracts: []string{contract.Hex()}})

	// no clause has both kinds, nothing is traced
	inserted, err := apply(t, idx, database, chain, 1)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	entries := queryAll(t, idx)
	require.Len(t, entries, 2)
	require.EqualValues(t, 1, entries[0].ClauseIndex)
	require.EqualValues(t, 2, entries[0].LogIndex)
	require.EqualValues(t, 2, entries[1].ClauseIndex)
	require.EqualValues(t, 3, entries[1].LogIndex)
}

func TestProcessBlock_NoRowsNoSnapshot(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.Extend(&thor.Transaction{ID: common.Hash{1}, Reverted: true})

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{})

	inserted, err := apply(t, idx, database, chain, 1)
	require.NoError(t, err)
	require.Zero(t, inserted)

	snapshots, err := store.New(database, logger.NewNopLogger()).Snapshots(database, idx.Name(), 0, 10)
	require.NoError(t, err)
	require.Empty(t, snapshots)
}

func TestBornAtAndNextBlock(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.ExtendN(4)
	id := chain.Extend(payTx(1, 5))
	chain.SetTrace(id, 0, 0, payTrace(5))
	chain.ExtendN(4)
	id = chain.Extend(payTx(2, 5))
	chain.SetTrace(id, 0, 0, payTrace(5))
	chain.ExtendN(2)

	idx, _ := newTestIndexer(t, chain, config.IndexerConfig{Contracts: []string{contract.Hex()}})
	ctx := t.Context()

	bornAt, err := idx.BornAt(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 5, bornAt)

	// skipping is opt-in
	next, err := idx.NextBlock(ctx, 6, 12)
	require.NoError(t, err)
	require.EqualValues(t, 6, next)

	idx, _ = newTestIndexer(t, chain, config.IndexerConfig{
		Contracts:       []string{contract.Hex()},
		SkipEmptyBlocks: true,
	})

	next, err = idx.NextBlock(ctx, 6, 12)
	require.NoError(t, err)
	require.EqualValues(t, 10, next)

	next, err = idx.NextBlock(ctx, 11, 12)
	require.NoError(t, err)
	require.EqualValues(t, 12, next)

	// without contracts every block is relevant
	all, _ := newTestIndexer(t, chain, config.IndexerConfig{Name: "all"})
	bornAt, err = all.BornAt(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, bornAt)
}

func TestBornAt_NoLogs(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.ExtendN(3)

	idx, _ := newTestIndexer(t, chain, config.IndexerConfig{Contracts: []string{contract.Hex()}})

	bornAt, err := idx.BornAt(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 3, bornAt)
}

func TestQueryLogs_Filters(t *testing.T) {
	chain := testutil.NewChain(1000)
	for i := range byte(4) {
		id := chain.Extend(payTx(i+1, int64(i+1)))
		chain.SetTrace(id, 0, 0, payTrace(int64(i+1)))
	}

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{})
	for n := uint32(1); n <= 4; n++ {
		_, err := apply(t, idx, database, chain, n)
		require.NoError(t, err)
	}

	from, to := uint32(2), uint32(3)
	entries, total, err := idx.QueryLogs(t.Context(), &indexer.QueryParams{
		Limit:     1,
		FromBlock: &from,
		ToBlock:   &to,
		SortOrder: "desc",
	})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, entries, 1)
	require.EqualValues(t, 3, entries[0].BlockNumber)

	entries, total, err = idx.QueryLogs(t.Context(), &indexer.QueryParams{Address: origin.Hex(), Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, entries, 4)
	for _, e := range entries {
		require.Equal(t, "transfer", e.Kind)
	}

	stats, err := idx.Stats(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 8, stats.TotalRows)
	require.EqualValues(t, 1, stats.EarliestBlock)
	require.EqualValues(t, 4, stats.LatestBlock)
}

func TestProcessor_Reorg(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.ExtendN(2)
	for i := range byte(3) {
		id := chain.Extend(payTx(i+1, 5))
		chain.SetTrace(id, 0, 0, payTrace(5))
	}

	idx, database := newTestIndexer(t, chain, config.IndexerConfig{Contracts: []string{contract.Hex()}})

	st := store.New(database, logger.NewNopLogger())
	p, err := processor.New(idx, processor.Options{Window: 5, SamplingInterval: 5 * time.Millisecond},
		chain, nil, st, nil, logger.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	p.Start(ctx)

	require.Eventually(t, func() bool {
		return p.Status().HeadNumber == 5
	}, 5*time.Second, 10*time.Millisecond)
	require.Len(t, queryAll(t, idx), 6)

	// blocks 4 and 5 are replaced by one block paying 9
	ids := chain.Fork(3, []*thor.Transaction{payTx(7, 9)}, nil, nil)
	chain.SetTrace(ids[0], 0, 0, payTrace(9))
	chain.SetTrunk(ids[2])

	require.Eventually(t, func() bool {
		return p.Status().HeadID == ids[2].Hex()
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, p.Stop())

	entries := queryAll(t, idx)
	require.Len(t, entries, 4)
	require.EqualValues(t, 3, entries[0].BlockNumber)
	require.Equal(t, ids[0].Hex(), entries[2].BlockID)
	require.Equal(t, "9", *entries[2].Amount)
}
