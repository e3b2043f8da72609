package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// blockState holds the accounts a block touched, accrued to the block timestamp.
type blockState struct {
	ledger *Indexer
	tx     *sql.Tx
	block  *thor.ExpandedBlock

	accounts map[common.Address]*Account
	changes  []change
	parent   *thor.BlockHeader
}

// applyTx charges the gas, then moves the VET and VTHO of every clause, then rewards the beneficiary.
func (s *blockState) applyTx(ctx context.Context, tx *thor.Transaction) error {
	payer := tx.GasPayer
	if payer == (common.Address{}) {
		payer = tx.Origin
	}

	if err := s.debit(ctx, tx, payer, energyOf, tx.Paid); err != nil {
		return err
	}

	for _, output := range tx.Outputs {
		for _, tr := range output.Transfers {
			if err := s.move(ctx, tx, tr.Sender, tr.Recipient, balanceOf, tr.Amount); err != nil {
				return err
			}
		}

		for _, ev := range output.Events {
			et, ok := decodeEnergyTransfer(ev)
			if !ok {
				continue
			}
			if err := s.move(ctx, tx, et.From, et.To, energyOf, (*hexutil.Big)(et.Value)); err != nil {
				return err
			}
		}
	}

	return s.credit(ctx, s.block.Beneficiary, energyOf, tx.Reward)
}

// field selects the balance or the energy of an account.
type field func(a *Account) *big.Int

func balanceOf(a *Account) *big.Int { return a.Balance }

func energyOf(a *Account) *big.Int { return a.Energy }

func (s *blockState) move(ctx context.Context, tx *thor.Transaction, from, to common.Address, f field,
	amount *hexutil.Big) error {
	if err := s.debit(ctx, tx, from, f, amount); err != nil {
		return err
	}
	return s.credit(ctx, to, f, amount)
}

func (s *blockState) debit(ctx context.Context, tx *thor.Transaction, addr common.Address, f field,
	amount *hexutil.Big) error {
	if amount == nil || amount.ToInt().Sign() == 0 || !s.ledger.isTracked(addr) {
		return nil
	}

	account, err := s.account(ctx, addr)
	if err != nil {
		return err
	}

	v := f(account)
	v.Sub(v, amount.ToInt())
	if v.Sign() < 0 {
		return indexer.NewConsistencyError(s.block.Number, s.block.ID, tx.ID,
			fmt.Sprintf("negative balance of %s: %s", addr.Hex(), v))
	}

	return nil
}

func (s *blockState) credit(ctx context.Context, addr common.Address, f field, amount *hexutil.Big) error {
	if amount == nil || amount.ToInt().Sign() == 0 || !s.ledger.isTracked(addr) {
		return nil
	}

	account, err := s.account(ctx, addr)
	if err != nil {
		return err
	}

	v := f(account)
	v.Add(v, amount.ToInt())

	return nil
}

// account returns the working copy of an account, loading or importing it on first use.
func (s *blockState) account(ctx context.Context, addr common.Address) (*Account, error) {
	if account, ok := s.accounts[addr]; ok {
		return account, nil
	}

	account, err := s.ledger.load(ctx, s.tx, addr)
	if err != nil {
		return nil, err
	}

	if account != nil {
		s.changes = append(s.changes, change{Address: addr, Prior: stateOf(account)})
	} else {
		if account, err = s.importAccount(ctx, addr); err != nil {
			return nil, err
		}
		s.changes = append(s.changes, change{Address: addr})
	}

	account.Energy = accrue(account.Balance, account.Energy, account.BlockTime, s.block.Timestamp)
	account.BlockTime = max(account.BlockTime, s.block.Timestamp)
	account.BlockNumber = s.block.Number
	s.accounts[addr] = account

	return account, nil
}

// importAccount reads the state of an account before the block from the node.
func (s *blockState) importAccount(ctx context.Context, addr common.Address) (*Account, error) {
	if s.parent == nil {
		parent, err := s.ledger.client.GetBlock(ctx, thor.RevisionID(s.block.ParentID))
		if err != nil {
			return nil, fmt.Errorf("failed to get parent of block %d: %w", s.block.Number, err)
		}
		if parent == nil {
			return nil, fmt.Errorf("parent %s of block %d not found", s.block.ParentID.Hex(), s.block.Number)
		}
		s.parent = parent
	}

	state, err := s.ledger.client.GetAccount(ctx, addr, thor.RevisionID(s.parent.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", addr.Hex(), err)
	}
	AccountsImportedInc(s.ledger.Name())

	return newAccount(addr, state, s.parent.Timestamp, s.parent.Number), nil
}
