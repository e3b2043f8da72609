// Package transfers indexes the events and VET transfers touching a set of contracts,
// in the order they were executed.
package transfers

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/indexers/transfers/migrations"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	internalindexer "github.com/goran-ethernal/ThorIndexor/internal/indexer"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/reconcile"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"github.com/russross/meddler"
	"golang.org/x/sync/errgroup"
)

// Type is the registered indexer type.
const Type = "transfers"

// traceConcurrency bounds the trace requests of one block in flight at the node.
const traceConcurrency = 8

type clauseKey struct{ tx, clause int }

// Compile-time checks of the capabilities of the indexer.
var (
	_ indexer.Indexer      = (*Indexer)(nil)
	_ indexer.Migrator     = (*Indexer)(nil)
	_ indexer.BlockSkipper = (*Indexer)(nil)
	_ indexer.LogReader    = (*Indexer)(nil)
	_ indexer.StatsReader  = (*Indexer)(nil)
)

func init() {
	indexer.Register(Type, func(cfg config.IndexerConfig, env indexer.Env, log *logger.Logger) (indexer.Indexer, error) {
		return New(cfg, env.DB, env.Client, log)
	})
}

// Log is one event or transfer of a clause.
type Log struct {
	ID          int64           `meddler:"id,pk"`
	BlockNumber uint32          `meddler:"block_number"`
	BlockID     common.Hash     `meddler:"block_id,hash"`
	BlockTime   uint64          `meddler:"block_time"`
	TxID        common.Hash     `meddler:"tx_id,hash"`
	TxIndex     uint32          `meddler:"tx_index"`
	ClauseIndex uint32          `meddler:"clause_index"`
	LogIndex    uint32          `meddler:"log_index"`
	Kind        string          `meddler:"kind"`
	Address     *common.Address `meddler:"address,address"`
	Topics      *string         `meddler:"topics"`
	Data        *string         `meddler:"data"`
	Sender      *common.Address `meddler:"sender,address"`
	Recipient   *common.Address `meddler:"recipient,address"`
	Amount      *big.Int        `meddler:"amount,bigint"`
}

// blockSnapshot is saved for blocks that inserted rows.
type blockSnapshot struct {
	Rows int `json:"rows"`
}

// Indexer records the events and transfers of the configured contracts.
// A log index is the position of the item among all the outputs of its transaction.
type Indexer struct {
	*internalindexer.BaseIndexer

	client    thor.Client
	contracts map[common.Address]struct{}
	addrs     []common.Address
	table     string
}

// New creates a transfers indexer. An empty contract list records every event and transfer.
func New(cfg config.IndexerConfig, database *sql.DB, client thor.Client, log *logger.Logger) (*Indexer, error) {
	if client == nil {
		return nil, fmt.Errorf("indexer %s: thor client is required", cfg.Name)
	}

	base := internalindexer.NewBaseIndexer(database, log.WithComponent(cfg.Name), cfg)

	addrs, err := base.Addresses()
	if err != nil {
		return nil, err
	}

	contracts := make(map[common.Address]struct{}, len(addrs))
	for _, a := range addrs {
		contracts[a] = struct{}{}
	}

	return &Indexer{
		BaseIndexer: base,
		client:      client,
		contracts:   contracts,
		addrs:       addrs,
		table:       base.Table("log"),
	}, nil
}

// Migrations implements indexer.Migrator.
func (t *Indexer) Migrations() []db.Migration {
	return t.PrefixMigrations(migrations.All())
}

// BornAt returns the block of the first event of the configured contracts,
// which is their creation.
func (t *Indexer) BornAt(ctx context.Context) (uint32, error) {
	if len(t.addrs) == 0 {
		return 1, nil
	}

	best, err := t.client.GetBlock(ctx, thor.RevisionBest)
	if err != nil {
		return 0, fmt.Errorf("failed to get best block: %w", err)
	}
	if best == nil {
		return 0, fmt.Errorf("node returned no best block")
	}

	first, err := t.firstLog(ctx, 0, best.Number)
	if err != nil {
		return 0, err
	}
	if first == nil {
		return max(best.Number, 1), nil
	}

	return max(first.Meta.BlockNumber, 1), nil
}

// NextBlock implements indexer.BlockSkipper. Skipping relies on events only, so it is
// opt-in through skip_empty_blocks.
func (t *Indexer) NextBlock(ctx context.Context, from, to uint32) (uint32, error) {
	if !t.Config().SkipEmptyBlocks || len(t.addrs) == 0 {
		return from, nil
	}

	first, err := t.firstLog(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if first == nil {
		return to, nil
	}

	return first.Meta.BlockNumber, nil
}

func (t *Indexer) firstLog(ctx context.Context, from, to uint32) (*thor.EventLog, error) {
	criteria := make([]thor.EventCriteria, 0, len(t.addrs))
	for i := range t.addrs {
		criteria = append(criteria, thor.EventCriteria{Address: &t.addrs[i]})
	}

	logs, err := t.client.FilterEventLogs(ctx, &thor.EventFilter{
		Range:       &thor.FilterRange{Unit: "block", From: uint64(from), To: uint64(to)},
		Options:     &thor.FilterOptions{Offset: 0, Limit: 1},
		CriteriaSet: criteria,
		Order:       "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs in [%d, %d]: %w", from, to, err)
	}
	if len(logs) == 0 {
		return nil, nil
	}

	return logs[0], nil
}

// ProcessGenesis implements indexer.Indexer. The log starts empty.
func (t *Indexer) ProcessGenesis(context.Context, *indexer.BlockContext) error {
	return nil
}

// ProcessBlock implements indexer.Indexer.
func (t *Indexer) ProcessBlock(ctx context.Context, bc *indexer.BlockContext) (int, error) {
	block := bc.Block
	inserted := 0

	traces, err := t.fetchTraces(ctx, block)
	if err != nil {
		return 0, err
	}

	for txIndex, tx := range block.Transactions {
		logIndex := uint32(0)

		for clauseIndex, output := range tx.Outputs {
			total := uint32(len(output.Events) + len(output.Transfers))
			if !t.touches(output) {
				logIndex += total
				continue
			}

			items, err := t.order(block, clauseIndex, tx, output, traces[clauseKey{txIndex, clauseIndex}])
			if err != nil {
				return 0, err
			}

			for _, item := range items {
				if !t.relevant(item) {
					continue
				}

				row := t.newLog(block, txIndex, clauseIndex, tx, logIndex+uint32(item.OverallIndex), item)
				if err := meddler.Insert(bc.Tx, t.table, row); err != nil {
					return 0, fmt.Errorf("failed to insert log of tx %s: %w", tx.ID.Hex(), err)
				}
				inserted++
			}

			logIndex += total
		}
	}

	if inserted > 0 {
		if err := bc.Snapshot(blockSnapshot{Rows: inserted}); err != nil {
			return 0, err
		}
	}

	return inserted, nil
}

// needsTrace reports whether the execution order of a clause differs from array order
// only through its call trace.
func (t *Indexer) needsTrace(output thor.Output) bool {
	return len(output.Events) > 0 && len(output.Transfers) > 0 && t.touches(output)
}

// fetchTraces requests the traces of every clause of block that needs one, concurrently.
func (t *Indexer) fetchTraces(ctx context.Context, block *thor.ExpandedBlock) (map[clauseKey]*thor.CallTrace, error) {
	var keys []clauseKey
	for txIndex, tx := range block.Transactions {
		for clauseIndex, output := range tx.Outputs {
			if t.needsTrace(output) {
				keys = append(keys, clauseKey{txIndex, clauseIndex})
			}
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	traces := make([]*thor.CallTrace, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(traceConcurrency)
	for i, k := range keys {
		g.Go(func() error {
			trace, err := t.client.TraceClause(gctx, block.ID, k.tx, k.clause)
			if err != nil {
				return fmt.Errorf("failed to trace clause %d of tx %s: %w",
					k.clause, block.Transactions[k.tx].ID.Hex(), err)
			}
			TracesInc(t.Name())
			traces[i] = trace
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byClause := make(map[clauseKey]*thor.CallTrace, len(keys))
	for i, k := range keys {
		byClause[k] = traces[i]
	}
	return byClause, nil
}

// order returns the outputs of a clause in execution order. Clauses without a trace
// are already in execution order.
func (t *Indexer) order(
	block *thor.ExpandedBlock,
	clauseIndex int,
	tx *thor.Transaction,
	output thor.Output,
	trace *thor.CallTrace,
) ([]reconcile.Item, error) {
	if trace == nil {
		return reconcile.ArrayOrder(output.Events, output.Transfers), nil
	}

	items, err := reconcile.All(trace, output.Events, output.Transfers)
	if err == nil {
		return items, nil
	}

	if t.Config().StrictOrder {
		return nil, fmt.Errorf("clause %d of tx %s in block %d (%s): %w",
			clauseIndex, tx.ID.Hex(), block.Number, block.ID.Hex(), err)
	}

	OrderFallbackInc(t.Name())
	t.Logger().Warnw("failed to reconcile clause, falling back to array order",
		"block", block.Number,
		"tx", tx.ID.Hex(),
		"clause", clauseIndex,
		"error", err,
	)

	return reconcile.ArrayOrder(output.Events, output.Transfers), nil
}

func (t *Indexer) touches(output thor.Output) bool {
	if len(t.contracts) == 0 {
		return len(output.Events)+len(output.Transfers) > 0
	}

	for _, ev := range output.Events {
		if t.watched(ev.Address) {
			return true
		}
	}
	for _, tr := range output.Transfers {
		if t.watched(tr.Sender) || t.watched(tr.Recipient) {
			return true
		}
	}

	return false
}

func (t *Indexer) relevant(item reconcile.Item) bool {
	if len(t.contracts) == 0 {
		return true
	}
	if item.Kind == reconcile.KindEvent {
		return t.watched(item.Event.Address)
	}
	return t.watched(item.Transfer.Sender) || t.watched(item.Transfer.Recipient)
}

func (t *Indexer) watched(addr common.Address) bool {
	_, ok := t.contracts[addr]
	return ok
}

func (t *Indexer) newLog(
	block *thor.ExpandedBlock,
	txIndex, clauseIndex int,
	tx *thor.Transaction,
	logIndex uint32,
	item reconcile.Item,
) *Log {
	row := &Log{
		BlockNumber: block.Number,
		BlockID:     block.ID,
		BlockTime:   block.Timestamp,
		TxID:        tx.ID,
		TxIndex:     uint32(txIndex),
		ClauseIndex: uint32(clauseIndex),
		LogIndex:    logIndex,
		Kind:        item.Kind.String(),
	}

	switch item.Kind {
	case reconcile.KindEvent:
		topics := make([]string, 0, len(item.Event.Topics))
		for _, topic := range item.Event.Topics {
			topics = append(topics, topic.Hex())
		}
		joined := strings.Join(topics, ",")
		data := item.Event.Data.String()

		address := item.Event.Address
		row.Address = &address
		row.Topics = &joined
		row.Data = &data
	case reconcile.KindTransfer:
		sender, recipient := item.Transfer.Sender, item.Transfer.Recipient
		row.Sender = &sender
		row.Recipient = &recipient
		row.Amount = new(big.Int)
		if item.Transfer.Amount != nil {
			row.Amount.Set(item.Transfer.Amount.ToInt())
		}
	}

	return row
}

// Revert implements indexer.Indexer by deleting every row of the reverted block.
func (t *Indexer) Revert(ctx context.Context, tx *sql.Tx, snapshot *store.Snapshot) error {
	var s blockSnapshot
	if err := snapshot.Decode(&s); err != nil {
		return err
	}

	deleted, err := t.DeleteBlock(ctx, tx, t.table, snapshot.BlockID)
	if err != nil {
		return err
	}
	if deleted != int64(s.Rows) {
		t.Logger().Warnw("unexpected number of reverted rows",
			"block", snapshot.BlockNumber,
			"expected", s.Rows,
			"deleted", deleted,
		)
	}

	return nil
}

// QueryLogs implements indexer.LogReader.
func (t *Indexer) QueryLogs(ctx context.Context, params *indexer.QueryParams) ([]*indexer.LogEntry, int, error) {
	meta := internalindexer.TableMetadata{
		Table:          t.table,
		AddressColumns: []string{"address", "sender", "recipient"},
		OrderColumns:   []string{"tx_index", "log_index"},
	}

	var rows []*Log
	total, err := t.Query(ctx, meta, params, &rows)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]*indexer.LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}

	return entries, total, nil
}

func (r *Log) entry() *indexer.LogEntry {
	e := &indexer.LogEntry{
		BlockNumber: r.BlockNumber,
		BlockID:     r.BlockID.Hex(),
		BlockTime:   r.BlockTime,
		TxID:        r.TxID.Hex(),
		ClauseIndex: r.ClauseIndex,
		LogIndex:    r.LogIndex,
		Kind:        r.Kind,
		Topics:      r.Topics,
		Data:        r.Data,
	}
	if r.Address != nil {
		address := r.Address.Hex()
		e.Address = &address
	}
	if r.Sender != nil {
		sender := r.Sender.Hex()
		e.Sender = &sender
	}
	if r.Recipient != nil {
		recipient := r.Recipient.Hex()
		e.Recipient = &recipient
	}
	if r.Amount != nil {
		amount := r.Amount.String()
		e.Amount = &amount
	}
	return e
}

// Stats implements indexer.StatsReader.
func (t *Indexer) Stats(ctx context.Context) (*indexer.StatsResponse, error) {
	return t.BaseIndexer.Stats(ctx, t.table)
}
