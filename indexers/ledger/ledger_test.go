package ledger

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
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/internal/testutil"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x00000000000000000000000000000000000ca201")
	miner = common.HexToAddress("0x000000000000000000000000000000000000beef")
)

func vet(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), oneVET)
}

func wei(v int64) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(v))
}

func encodeEnergyTransfer(from, to common.Address, value *big.Int) thor.Event {
	data, err := builtinEnergy.Events["Transfer"].Inputs.NonIndexed().Pack(value)
	if err != nil {
		panic(err)
	}

	return thor.Event{
		Address: thor.EnergyAddress,
		Topics: []common.Hash{
			TransferTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}
}

func newTestLedger(t *testing.T, chain *testutil.Chain, cfg config.IndexerConfig) (*Indexer, *sql.DB) {
	t.Helper()

	if cfg.Name == "" {
		cfg.Name = "balances"
	}
	cfg.Type = Type
	cfg.ApplyDefaults()

	l, err := New(cfg, nil, chain, logger.NewNopLogger())
	require.NoError(t, err)

	database := testutil.NewTestDB(t, l.Migrations()...)
	l.DB = database

	return l, database
}

func apply(t *testing.T, l *Indexer, database *sql.DB, chain *testutil.Chain, n uint32) (int, error) {
	t.Helper()

	block, err := chain.GetExpandedBlock(t.Context(), thor.RevisionNumber(n))
	require.NoError(t, err)

	st := store.New(database, logger.NewNopLogger())

	var changed int
	err = db.RunInTx(t.Context(), database, nil, l.Name(), func(tx *sql.Tx) error {
		var err error
		changed, err = l.ProcessBlock(t.Context(), &indexer.BlockContext{
			Tx:           tx,
			Block:        block,
			SaveSnapshot: true,
			Snapshot: func(payload any) error {
				return st.SaveSnapshot(tx, l.Name(), block.ID, payload)
			},
			Client: chain,
		})
		return err
	})

	return changed, err
}

func revert(t *testing.T, l *Indexer, database *sql.DB, n uint32) {
	t.Helper()

	st := store.New(database, logger.NewNopLogger())
	snapshots, err := st.Snapshots(database, l.Name(), n, n)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	require.NoError(t, db.RunInTx(t.Context(), database, nil, l.Name(), func(tx *sql.Tx) error {
		if err := l.Revert(t.Context(), tx, snapshots[0]); err != nil {
			return err
		}
		return st.DeleteSnapshot(tx, l.Name(), snapshots[0].BlockID)
	}))
}

func requireAccount(t *testing.T, l *Indexer, addr common.Address, balance, energy *big.Int, blockTime uint64) {
	t.Helper()

	state, err := l.Account(t.Context(), addr)
	require.NoError(t, err)
	require.Equal(t, balance.String(), state.Balance, "balance of %s", addr.Hex())
	require.Equal(t, energy.String(), state.Energy, "energy of %s", addr.Hex())
	require.Equal(t, blockTime, state.BlockTime)
}

func requireMissing(t *testing.T, l *Indexer, addr common.Address) {
	t.Helper()

	_, err := l.Account(t.Context(), addr)
	require.ErrorIs(t, err, indexer.ErrNotFound)
}

func TestAccrue(t *testing.T) {
	tests := []struct {
		name     string
		balance  *big.Int
		energy   *big.Int
		from, to uint64
		want     *big.Int
	}{
		{name: "one VET for one second", balance: vet(1), energy: big.NewInt(0), from: 0, to: 1,
			want: big.NewInt(5_000_000_000)},
		{name: "adds to energy", balance: vet(100), energy: big.NewInt(7), from: 1000, to: 1010,
			want: big.NewInt(5_000_000_000_007)},
		{name: "truncates", balance: big.NewInt(1), energy: big.NewInt(3), from: 0, to: 1,
			want: big.NewInt(3)},
		{name: "no time elapsed", balance: vet(1), energy: big.NewInt(3), from: 10, to: 10,
			want: big.NewInt(3)},
		{name: "no balance", balance: big.NewInt(0), energy: big.NewInt(3), from: 0, to: 100,
			want: big.NewInt(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := new(big.Int).Set(tt.energy)
			require.Equal(t, tt.want.String(), accrue(tt.balance, tt.energy, tt.from, tt.to).String())
			require.Equal(t, before, tt.energy)
		})
	}
}

func TestDecodeEnergyTransfer(t *testing.T) {
	require.Equal(t, builtinEnergy.Events["Transfer"].ID, TransferTopic)

	et, ok := decodeEnergyTransfer(encodeEnergyTransfer(alice, bob, big.NewInt(42)))
	require.True(t, ok)
	require.Equal(t, alice, et.From)
	require.Equal(t, bob, et.To)
	require.EqualValues(t, 42, et.Value.Int64())

	other := encodeEnergyTransfer(alice, bob, big.NewInt(42))
	other.Address = carol
	_, ok = decodeEnergyTransfer(other)
	require.False(t, ok)

	truncated := encodeEnergyTransfer(alice, bob, big.NewInt(42))
	truncated.Data = truncated.Data[:8]
	_, ok = decodeEnergyTransfer(truncated)
	require.False(t, ok)
}

func TestNew(t *testing.T) {
	chain := testutil.NewChain(0)

	_, err := New(config.IndexerConfig{Name: "x", GenesisAccounts: []string{"nope"}}, nil, chain,
		logger.NewNopLogger())
	require.ErrorContains(t, err, "invalid genesis account")

	l, err := New(config.IndexerConfig{
		Name:            "x",
		Contracts:       []string{alice.Hex(), bob.Hex()},
		GenesisAccounts: []string{carol.Hex(), alice.Hex()},
	}, nil, chain, logger.NewNopLogger())
	require.NoError(t, err)

	// untracked genesis accounts are ignored, tracked ones are always imported
	require.Equal(t, []common.Address{alice, bob}, l.genesis)
}

func TestProcessGenesis(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.SetAccount(alice, &thor.Account{Balance: (*hexutil.Big)(vet(3)), Energy: wei(9)})

	l, database := newTestLedger(t, chain, config.IndexerConfig{GenesisAccounts: []string{alice.Hex(), bob.Hex()}})

	genesis, err := chain.GetExpandedBlock(t.Context(), thor.RevisionNumber(0))
	require.NoError(t, err)

	require.NoError(t, db.RunInTx(t.Context(), database, nil, l.Name(), func(tx *sql.Tx) error {
		return l.ProcessGenesis(t.Context(), &indexer.BlockContext{Tx: tx, Block: genesis, Client: chain})
	}))

	requireAccount(t, l, alice, vet(3), big.NewInt(9), 1000)
	requireAccount(t, l, bob, big.NewInt(0), big.NewInt(0), 1000)
	requireMissing(t, l, carol)
}

func TestBornAt(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.ExtendN(7)

	l, _ := newTestLedger(t, chain, config.IndexerConfig{})
	bornAt, err := l.BornAt(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 1, bornAt)

	l, _ = newTestLedger(t, chain, config.IndexerConfig{Contracts: []string{alice.Hex()}})
	bornAt, err = l.BornAt(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 7, bornAt)
}

func TestProcessBlock(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.Beneficiary = miner
	chain.SetAccount(alice, &thor.Account{Balance: (*hexutil.Big)(vet(100)), Energy: wei(1000)})

	// block 1 at 1010: alice pays bob 40 VET and 700 of gas
	chain.Extend(&thor.Transaction{
		ID:       common.Hash{1},
		Origin:   alice,
		GasPayer: alice,
		Paid:     wei(700),
		Reward:   wei(210),
		Outputs: []thor.Output{{
			Transfers: []thor.Transfer{{Sender: alice, Recipient: bob, Amount: (*hexutil.Big)(vet(40))}},
		}},
	})
	// block 2 at 1020: alice sponsors bob and sends 1000 VTHO to carol
	chain.Extend(&thor.Transaction{
		ID:       common.Hash{2},
		Origin:   bob,
		GasPayer: alice,
		Paid:     wei(100),
		Reward:   wei(30),
		Outputs: []thor.Output{{
			Events: []thor.Event{
				{Address: carol, Topics: []common.Hash{TransferTopic}},
				encodeEnergyTransfer(alice, carol, big.NewInt(1000)),
			},
		}},
	})

	l, database := newTestLedger(t, chain, config.IndexerConfig{})

	changed, err := apply(t, l, database, chain, 1)
	require.NoError(t, err)
	require.Equal(t, 3, changed)

	aliceEnergy1 := big.NewInt(5_000_000_000_000 + 1000 - 700)
	requireAccount(t, l, alice, vet(60), aliceEnergy1, 1010)
	requireAccount(t, l, bob, vet(40), big.NewInt(0), 1010)
	requireAccount(t, l, miner, big.NewInt(0), big.NewInt(210), 1010)

	changed, err = apply(t, l, database, chain, 2)
	require.NoError(t, err)
	require.Equal(t, 3, changed)

	// 60 VET for 10s grow 3e12
	requireAccount(t, l, alice, vet(60), big.NewInt(8_000_000_000_000+300-100-1000), 1020)
	requireAccount(t, l, carol, big.NewInt(0), big.NewInt(1000), 1020)
	requireAccount(t, l, miner, big.NewInt(0), big.NewInt(240), 1020)
	requireAccount(t, l, bob, vet(40), big.NewInt(0), 1010)

	revert(t, l, database, 2)
	requireAccount(t, l, alice, vet(60), aliceEnergy1, 1010)
	requireAccount(t, l, miner, big.NewInt(0), big.NewInt(210), 1010)
	requireMissing(t, l, carol)

	revert(t, l, database, 1)
	requireMissing(t, l, alice)
	requireMissing(t, l, bob)
	requireMissing(t, l, miner)
}

func TestProcessBlock_TrackedAccounts(t *testing.T) {
	chain := testutil.NewChain(1000)
	chain.Beneficiary = miner
	chain.SetAccount(alice, &thor.Account{Balance: (*hexutil.Big)(vet(10))})

	chain.Extend(&thor.Transaction{
		ID:     common.Hash{1},
		Origin: alice,
		Paid:   wei(0),
		Reward: wei(5),
		Outputs: []thor.Output{{
			Transfers: []thor.Transfer{{Sender: alice, Recipient: bob, Amount: (*hexutil.Big)(vet(1))}},
		}},
	})
	chain.Extend(&thor.Transaction{ID: common.Hash{2}, Origin: carol})

	l, database := newTestLedger(t, chain, config.IndexerConfig{Contracts: []string{bob.Hex()}})

	changed, err := apply(t, l, database, chain, 1)
	require.NoError(t, err)
	require.Equal(t, 1, changed)
	requireAccount(t, l, bob, vet(1), big.NewInt(0), 1010)
	requireMissing(t, l, alice)
	requireMissing(t, l, miner)

	changed, err = apply(t, l, database, chain, 2)
	require.NoError(t, err)
	require.Zero(t, changed)

	snapshots, err := store.New(database, logger.NewNopLogger()).Snapshots(database, l.Name(), 2, 2)
	require.NoError(t, err)
	require.Empty(t, snapshots)

	stats, err := l.Stats(t.Context())
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.TotalRows)
	require.EqualValues(t, 1, stats.LatestBlock)
}

func TestProcessBlock_NegativeBalance(t *testing.T) {
	tests := []struct {
		name string
		tx   *thor.Transaction
	}{
		{
			name: "VET",
			tx: &thor.Transaction{ID: common.Hash{1}, Outputs: []thor.Output{{
				Transfers: []thor.Transfer{{Sender: carol, Recipient: bob, Amount: wei(1)}},
			}}},
		},
		{
			name: "VTHO",
			tx: &thor.Transaction{ID: common.Hash{1}, Outputs: []thor.Output{{
				Events: []thor.Event{encodeEnergyTransfer(carol, bob, big.NewInt(1))},
			}}},
		},
		{
			name: "gas",
			tx:   &thor.Transaction{ID: common.Hash{1}, Origin: carol, Paid: wei(1), Reverted: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := testutil.NewChain(1000)
			id := chain.Extend(tt.tx)

			l, database := newTestLedger(t, chain, config.IndexerConfig{})

			_, err := apply(t, l, database, chain, 1)
			require.ErrorIs(t, err, indexer.ErrConsistency)
			require.True(t, processor.IsFatal(err))

			var consistency *indexer.ConsistencyError
			require.ErrorAs(t, err, &consistency)
			require.Equal(t, id, consistency.BlockID)
			require.Equal(t, common.Hash{1}, consistency.TxID)

			requireMissing(t, l, carol)
		})
	}
}

func TestProcessor_ReorgMatchesDirectProcessing(t *testing.T) {
	pay := func(id byte, from, to common.Address, amount int64, paid int64) *thor.Transaction {
		return &thor.Transaction{
			ID:       common.Hash{id},
			Origin:   from,
			GasPayer: from,
			Paid:     wei(paid),
			Reward:   wei(paid / 2),
			Outputs: []thor.Output{{
				Transfers: []thor.Transfer{{Sender: from, Recipient: to, Amount: (*hexutil.Big)(vet(amount))}},
			}},
		}
	}

	chain := testutil.NewChain(1000)
	chain.Beneficiary = miner
	chain.SetAccount(alice, &thor.Account{Balance: (*hexutil.Big)(vet(100)), Energy: wei(1_000_000)})
	chain.SetAccount(bob, &thor.Account{Balance: (*hexutil.Big)(vet(5)), Energy: wei(1_000_000)})

	chain.Extend(pay(1, alice, bob, 10, 100))
	chain.Extend(pay(2, bob, carol, 3, 50))
	chain.Extend(pay(3, alice, carol, 20, 70))
	chain.Extend(pay(4, carol, alice, 1, 0))

	l, database := newTestLedger(t, chain, config.IndexerConfig{})

	p, err := processor.New(l, processor.Options{Window: 5, SamplingInterval: 5 * time.Millisecond},
		chain, nil, store.New(database, logger.NewNopLogger()), nil, logger.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	p.Start(ctx)

	require.Eventually(t, func() bool {
		return p.Status().HeadNumber == 4
	}, 5*time.Second, 10*time.Millisecond)

	// blocks 3 and 4 are replaced by three other blocks
	ids := chain.Fork(2,
		[]*thor.Transaction{pay(5, bob, alice, 2, 10)},
		nil,
		[]*thor.Transaction{pay(6, alice, miner, 1, 20)},
	)
	chain.SetTrunk(ids[2])

	require.Eventually(t, func() bool {
		return p.Status().HeadID == ids[2].Hex()
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, p.Stop())

	direct, directDB := newTestLedger(t, chain, config.IndexerConfig{Name: "direct"})
	for n := uint32(1); n <= 5; n++ {
		_, err := apply(t, direct, directDB, chain, n)
		require.NoError(t, err)
	}

	for _, addr := range []common.Address{alice, bob, carol, miner} {
		want, wantErr := direct.Account(t.Context(), addr)
		got, gotErr := l.Account(t.Context(), addr)
		require.Equal(t, wantErr, gotErr, addr.Hex())
		require.Equal(t, want, got, addr.Hex())
	}

	state, err := l.Account(t.Context(), carol)
	require.NoError(t, err)
	require.Equal(t, vet(3).String(), state.Balance)
}
