package indexer

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/testutil"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/russross/meddler"
	"github.com/stretchr/testify/require"
)

const paymentMigration = `-- +migrate Down
DROP TABLE IF EXISTS /*dbprefix*/payment;

-- +migrate Up
CREATE TABLE IF NOT EXISTS /*dbprefix*/payment (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    block_number INTEGER NOT NULL,
    block_id     TEXT    NOT NULL,
    log_index    INTEGER NOT NULL,
    payer        TEXT    NOT NULL,
    payee        TEXT    NOT NULL
);`

type payment struct {
	ID          int64          `meddler:"id,pk"`
	BlockNumber uint32         `meddler:"block_number"`
	BlockID     common.Hash    `meddler:"block_id,hash"`
	LogIndex    uint32         `meddler:"log_index"`
	Payer       common.Address `meddler:"payer,address"`
	Payee       common.Address `meddler:"payee,address"`
}

var (
	payer = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	payee = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func newTestBase(t *testing.T, cfg config.IndexerConfig) (*BaseIndexer, string) {
	t.Helper()

	base := NewBaseIndexer(nil, logger.NewNopLogger(), cfg)
	base.DB = testutil.NewTestDB(t, base.PrefixMigrations([]db.Migration{
		{ID: "payment.sql", SQL: paymentMigration},
	})...)

	return base, base.Table("payment")
}

func blockHash(n uint32) common.Hash {
	return common.Hash{31: byte(n)}
}

func insertPayments(t *testing.T, base *BaseIndexer, table string, rows ...*payment) {
	t.Helper()

	for _, r := range rows {
		require.NoError(t, meddler.Insert(base.DB, table, r))
	}
}

func TestTablePrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "ledger", want: "ledger_"},
		{name: "VTHO Transfers", want: "vtho_transfers_"},
		{name: "my-token.v2", want: "my_token_v2_"},
		{name: "--x--", want: "x_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, TablePrefix(tt.name))
		})
	}
}

func TestBaseIndexer_Accessors(t *testing.T) {
	cfg := config.IndexerConfig{Name: "Pay", Type: "transfers", Contracts: []string{payer.Hex()}}
	base := NewBaseIndexer(nil, logger.NewNopLogger(), cfg)

	require.Equal(t, "Pay", base.Name())
	require.Equal(t, "transfers", base.GetType())
	require.Equal(t, cfg, base.Config())
	require.NotNil(t, base.Logger())
	require.Equal(t, "pay_log", base.Table("log"))
	require.NoError(t, base.Close())

	migs := base.PrefixMigrations([]db.Migration{{ID: "a.sql"}, {ID: "b.sql"}})
	require.Len(t, migs, 2)
	for _, m := range migs {
		require.Equal(t, "pay_", m.Prefix)
	}

	addrs, err := base.Addresses()
	require.NoError(t, err)
	require.Equal(t, []common.Address{payer}, addrs)

	addrs, err = NewBaseIndexer(nil, logger.NewNopLogger(), config.IndexerConfig{}).Addresses()
	require.NoError(t, err)
	require.Nil(t, addrs)

	_, err = NewBaseIndexer(nil, logger.NewNopLogger(),
		config.IndexerConfig{Name: "bad", Contracts: []string{"0x1234"}}).Addresses()
	require.ErrorContains(t, err, "invalid contract address")
}

func TestBaseIndexer_Query(t *testing.T) {
	base, table := newTestBase(t, config.IndexerConfig{Name: "pay"})

	insertPayments(t, base, table,
		&payment{BlockNumber: 1, BlockID: blockHash(1), LogIndex: 0, Payer: payer, Payee: payee},
		&payment{BlockNumber: 2, BlockID: blockHash(2), LogIndex: 1, Payer: payee, Payee: payer},
		&payment{BlockNumber: 2, BlockID: blockHash(2), LogIndex: 0, Payer: payer, Payee: payee},
		&payment{BlockNumber: 3, BlockID: blockHash(3), LogIndex: 0, Payer: payee, Payee: payee},
	)

	meta := TableMetadata{Table: table, AddressColumns: []string{"payer"}, OrderColumns: []string{"log_index"}}
	from, to := uint32(2), uint32(3)

	tests := []struct {
		name      string
		params    *indexer.QueryParams
		wantTotal int
		want      [][2]uint32 // block, log index
	}{
		{
			name:      "defaults sort newest first",
			params:    nil,
			wantTotal: 4,
			want:      [][2]uint32{{3, 0}, {2, 1}, {2, 0}, {1, 0}},
		},
		{
			name:      "ascending with tie break",
			params:    &indexer.QueryParams{SortOrder: "ASC"},
			wantTotal: 4,
			want:      [][2]uint32{{1, 0}, {2, 0}, {2, 1}, {3, 0}},
		},
		{
			name:      "block range",
			params:    &indexer.QueryParams{FromBlock: &from, ToBlock: &to, SortOrder: "asc"},
			wantTotal: 3,
			want:      [][2]uint32{{2, 0}, {2, 1}, {3, 0}},
		},
		{
			name:      "address in any case",
			params:    &indexer.QueryParams{Address: "0x00000000000000000000000000000000000000B2", SortOrder: "asc"},
			wantTotal: 2,
			want:      [][2]uint32{{2, 1}, {3, 0}},
		},
		{
			name:      "pagination",
			params:    &indexer.QueryParams{Limit: 2, Offset: 1, SortOrder: "asc"},
			wantTotal: 4,
			want:      [][2]uint32{{2, 0}, {2, 1}},
		},
		{
			name:      "limit is capped",
			params:    &indexer.QueryParams{Limit: 1_000_000, Offset: -3},
			wantTotal: 4,
			want:      [][2]uint32{{3, 0}, {2, 1}, {2, 0}, {1, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []*payment
			total, err := base.Query(t.Context(), meta, tt.params, &rows)
			require.NoError(t, err)
			require.Equal(t, tt.wantTotal, total)

			got := make([][2]uint32, 0, len(rows))
			for _, r := range rows {
				got = append(got, [2]uint32{r.BlockNumber, r.LogIndex})
			}
			require.Equal(t, tt.want, got)
		})
	}

	_, err := base.Query(t.Context(), TableMetadata{Table: "missing"}, nil, &[]*payment{})
	require.Error(t, err)
}

func TestBaseIndexer_StatsAndDeleteBlock(t *testing.T) {
	base, table := newTestBase(t, config.IndexerConfig{Name: "pay"})

	stats, err := base.Stats(t.Context(), table)
	require.NoError(t, err)
	require.Equal(t, &indexer.StatsResponse{}, stats)

	insertPayments(t, base, table,
		&payment{BlockNumber: 4, BlockID: blockHash(4), Payer: payer, Payee: payee},
		&payment{BlockNumber: 9, BlockID: blockHash(9), Payer: payer, Payee: payee},
		&payment{BlockNumber: 9, BlockID: blockHash(9), LogIndex: 1, Payer: payer, Payee: payee},
	)

	stats, err = base.Stats(t.Context(), table)
	require.NoError(t, err)
	require.Equal(t, &indexer.StatsResponse{TotalRows: 3, EarliestBlock: 4, LatestBlock: 9}, stats)

	tx, err := base.DB.BeginTx(t.Context(), nil)
	require.NoError(t, err)
	deleted, err := base.DeleteBlock(t.Context(), tx, table, blockHash(9))
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
	require.NoError(t, tx.Commit())

	stats, err = base.Stats(t.Context(), table)
	require.NoError(t, err)
	require.Equal(t, &indexer.StatsResponse{TotalRows: 1, EarliestBlock: 4, LatestBlock: 4}, stats)

	var remaining int
	require.NoError(t, base.DB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&remaining))
	require.Equal(t, 1, remaining)

	_, err = base.Stats(t.Context(), "missing")
	require.Error(t, err)
}
