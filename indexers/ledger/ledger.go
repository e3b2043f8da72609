// Package ledger keeps the VET balance and VTHO energy of accounts, block by block.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/indexers/ledger/migrations"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	internalindexer "github.com/goran-ethernal/ThorIndexor/internal/indexer"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"github.com/russross/meddler"
)

// Type is the registered indexer type.
const Type = "ledger"

var (
	_ indexer.Indexer       = (*Indexer)(nil)
	_ indexer.Migrator      = (*Indexer)(nil)
	_ indexer.AccountReader = (*Indexer)(nil)
	_ indexer.StatsReader   = (*Indexer)(nil)
)

func init() {
	indexer.Register(Type, func(cfg config.IndexerConfig, env indexer.Env, log *logger.Logger) (indexer.Indexer, error) {
		return New(cfg, env.DB, env.Client, log)
	})
}

// Account is the indexed state of an account. Energy is valid at BlockTime.
type Account struct {
	Address     common.Address `meddler:"address,address"`
	Balance     *big.Int       `meddler:"balance,bigint"`
	Energy      *big.Int       `meddler:"energy,bigint"`
	BlockTime   uint64         `meddler:"block_time"`
	BlockNumber uint32         `meddler:"block_number"`
}

// accountState is the state of an account before a block changed it.
type accountState struct {
	Balance     string `json:"balance"`
	Energy      string `json:"energy"`
	BlockTime   uint64 `json:"block_time"`
	BlockNumber uint32 `json:"block_number"`
}

// change records one account touched by a block. Prior is nil for accounts the block imported.
type change struct {
	Address common.Address `json:"address"`
	Prior   *accountState  `json:"prior"`
}

type blockSnapshot struct {
	Changes []change `json:"changes"`
}

// Indexer maintains the balances of the tracked accounts.
// Accounts are imported from the node state the first time a block touches them.
type Indexer struct {
	*internalindexer.BaseIndexer

	client  thor.Client
	tracked map[common.Address]struct{}
	genesis []common.Address
	table   string
}

// New creates a ledger indexer. The configured contracts are the tracked accounts,
// an empty list tracks every account.
func New(cfg config.IndexerConfig, database *sql.DB, client thor.Client, log *logger.Logger) (*Indexer, error) {
	if client == nil {
		return nil, fmt.Errorf("indexer %s: thor client is required", cfg.Name)
	}

	base := internalindexer.NewBaseIndexer(database, log.WithComponent(cfg.Name), cfg)

	addrs, err := base.Addresses()
	if err != nil {
		return nil, err
	}

	tracked := make(map[common.Address]struct{}, len(addrs))
	for _, a := range addrs {
		tracked[a] = struct{}{}
	}

	l := &Indexer{
		BaseIndexer: base,
		client:      client,
		tracked:     tracked,
		table:       base.Table("account"),
	}

	seen := make(map[common.Address]struct{})
	for _, s := range append(append([]string{}, cfg.GenesisAccounts...), cfg.Contracts...) {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("indexer %s: invalid genesis account %q", cfg.Name, s)
		}
		addr := common.HexToAddress(s)
		if _, ok := seen[addr]; ok || !l.isTracked(addr) {
			continue
		}
		seen[addr] = struct{}{}
		l.genesis = append(l.genesis, addr)
	}

	return l, nil
}

// Migrations implements indexer.Migrator.
func (l *Indexer) Migrations() []db.Migration {
	return l.PrefixMigrations(migrations.All())
}

// BornAt starts a ledger of every account at the first block. A ledger of selected
// accounts imports them at its genesis and can start at the best block.
func (l *Indexer) BornAt(ctx context.Context) (uint32, error) {
	if len(l.tracked) == 0 {
		return 1, nil
	}

	best, err := l.client.GetBlock(ctx, thor.RevisionBest)
	if err != nil {
		return 0, fmt.Errorf("failed to get best block: %w", err)
	}
	if best == nil {
		return 0, errors.New("node returned no best block")
	}

	return max(best.Number, 1), nil
}

// ProcessGenesis imports the genesis accounts as the node knows them at the genesis block.
func (l *Indexer) ProcessGenesis(ctx context.Context, bc *indexer.BlockContext) error {
	for _, addr := range l.genesis {
		state, err := l.client.GetAccount(ctx, addr, thor.RevisionID(bc.Block.ID))
		if err != nil {
			return fmt.Errorf("failed to get account %s: %w", addr.Hex(), err)
		}

		account := newAccount(addr, state, bc.Block.Timestamp, bc.Block.Number)
		if err := l.save(ctx, bc.Tx, account); err != nil {
			return err
		}
		AccountsImportedInc(l.Name())
	}

	if len(l.genesis) > 0 {
		l.Logger().Infow("genesis accounts imported", "block", bc.Block.Number, "accounts", len(l.genesis))
	}

	return nil
}

// ProcessBlock implements indexer.Indexer. It returns the number of accounts written.
func (l *Indexer) ProcessBlock(ctx context.Context, bc *indexer.BlockContext) (int, error) {
	s := &blockState{
		ledger:   l,
		tx:       bc.Tx,
		block:    bc.Block,
		accounts: make(map[common.Address]*Account),
	}

	for _, tx := range bc.Block.Transactions {
		if err := s.applyTx(ctx, tx); err != nil {
			return 0, err
		}
	}

	if len(s.changes) == 0 {
		return 0, nil
	}

	for _, c := range s.changes {
		if err := l.save(ctx, bc.Tx, s.accounts[c.Address]); err != nil {
			return 0, err
		}
	}

	if err := bc.Snapshot(blockSnapshot{Changes: s.changes}); err != nil {
		return 0, err
	}
	AccountsTouchedObserve(l.Name(), len(s.changes))

	return len(s.changes), nil
}

// Revert implements indexer.Indexer by restoring every account the block changed.
func (l *Indexer) Revert(ctx context.Context, tx *sql.Tx, snapshot *store.Snapshot) error {
	var s blockSnapshot
	if err := snapshot.Decode(&s); err != nil {
		return err
	}

	for _, c := range s.Changes {
		if c.Prior == nil {
			//nolint:gosec // Table name comes from trusted metadata, not user input
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+l.table+" WHERE address = ?", c.Address.Hex()); err != nil {
				return fmt.Errorf("failed to delete account %s: %w", c.Address.Hex(), err)
			}
			continue
		}

		account, err := c.Prior.account(c.Address)
		if err != nil {
			return fmt.Errorf("block %d: %w", snapshot.BlockNumber, err)
		}
		if err := l.save(ctx, tx, account); err != nil {
			return err
		}
	}

	return nil
}

// Account implements indexer.AccountReader.
func (l *Indexer) Account(ctx context.Context, addr common.Address) (*indexer.AccountState, error) {
	account, err := l.load(ctx, l.DB, addr)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account %s: %w", addr.Hex(), indexer.ErrNotFound)
	}

	return &indexer.AccountState{
		Address:     account.Address.Hex(),
		Balance:     account.Balance.String(),
		Energy:      account.Energy.String(),
		BlockTime:   account.BlockTime,
		BlockNumber: account.BlockNumber,
	}, nil
}

// Stats implements indexer.StatsReader.
func (l *Indexer) Stats(ctx context.Context) (*indexer.StatsResponse, error) {
	return l.BaseIndexer.Stats(ctx, l.table)
}

func (l *Indexer) isTracked(addr common.Address) bool {
	if addr == (common.Address{}) {
		return false
	}
	if len(l.tracked) == 0 {
		return true
	}
	_, ok := l.tracked[addr]
	return ok
}

// load returns the stored account, nil when it is unknown.
func (l *Indexer) load(ctx context.Context, q meddler.DB, addr common.Address) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var account Account
	//nolint:gosec // Table name comes from trusted metadata, not user input
	err := meddler.QueryRow(q, &account, "SELECT * FROM "+l.table+" WHERE address = ?", addr.Hex())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", addr.Hex(), err)
	}

	return &account, nil
}

func (l *Indexer) save(ctx context.Context, tx *sql.Tx, a *Account) error {
	//nolint:gosec // Table name comes from trusted metadata, not user input
	_, err := tx.ExecContext(ctx, `INSERT INTO `+l.table+` (address, balance, energy, block_time, block_number)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			balance = excluded.balance,
			energy = excluded.energy,
			block_time = excluded.block_time,
			block_number = excluded.block_number`,
		a.Address.Hex(), a.Balance.String(), a.Energy.String(), a.BlockTime, a.BlockNumber)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", a.Address.Hex(), err)
	}

	return nil
}

func newAccount(addr common.Address, state *thor.Account, blockTime uint64, blockNumber uint32) *Account {
	account := &Account{
		Address:     addr,
		Balance:     new(big.Int),
		Energy:      new(big.Int),
		BlockTime:   blockTime,
		BlockNumber: blockNumber,
	}
	if state != nil && state.Balance != nil {
		account.Balance.Set(state.Balance.ToInt())
	}
	if state != nil && state.Energy != nil {
		account.Energy.Set(state.Energy.ToInt())
	}
	return account
}

func stateOf(a *Account) *accountState {
	return &accountState{
		Balance:     a.Balance.String(),
		Energy:      a.Energy.String(),
		BlockTime:   a.BlockTime,
		BlockNumber: a.BlockNumber,
	}
}

func (s *accountState) account(addr common.Address) (*Account, error) {
	balance, ok := new(big.Int).SetString(s.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance %q of account %s", s.Balance, addr.Hex())
	}
	energy, ok := new(big.Int).SetString(s.Energy, 10)
	if !ok {
		return nil, fmt.Errorf("invalid energy %q of account %s", s.Energy, addr.Hex())
	}

	return &Account{
		Address:     addr,
		Balance:     balance,
		Energy:      energy,
		BlockTime:   s.BlockTime,
		BlockNumber: s.BlockNumber,
	}, nil
}
