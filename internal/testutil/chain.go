// Package testutil provides an in-memory Thor chain for tests.
package testutil

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// Compile-time check to ensure Chain implements thor.Client interface.
var _ thor.Client = (*Chain)(nil)

// BlockInterval is the timestamp distance between two consecutive fake blocks.
const BlockInterval = 10

// Chain is an in-memory chain of expanded blocks with a switchable trunk.
// It answers the Thor client API the way a node would.
type Chain struct {
	mu       sync.Mutex
	seq      uint32
	blocks   map[common.Hash]*thor.ExpandedBlock
	trunk    []common.Hash
	traces   map[string]*thor.CallTrace
	accounts map[common.Address]*thor.Account

	// GetBlockErr, when set, is returned by the next GetBlock call.
	GetBlockErr error
	// Beneficiary is set on the blocks created from then on.
	Beneficiary common.Address
}

// NewChain creates a chain holding only the genesis block.
func NewChain(genesisTime uint64) *Chain {
	c := &Chain{
		blocks:   make(map[common.Hash]*thor.ExpandedBlock),
		traces:   make(map[string]*thor.CallTrace),
		accounts: make(map[common.Address]*thor.Account),
	}

	genesis := c.newBlock(nil, genesisTime, nil)
	c.trunk = []common.Hash{genesis.ID}

	return c
}

func (c *Chain) newBlock(parent *thor.ExpandedBlock, timestamp uint64, txs []*thor.Transaction) *thor.ExpandedBlock {
	c.seq++

	var number uint32
	var parentID common.Hash
	if parent != nil {
		number = parent.Number + 1
		parentID = parent.ID
		timestamp = parent.Timestamp + BlockInterval
	}

	var id common.Hash
	binary.BigEndian.PutUint32(id[:4], number)
	binary.BigEndian.PutUint32(id[28:], c.seq)

	block := &thor.ExpandedBlock{
		BlockHeader: thor.BlockHeader{
			Number:      number,
			ID:          id,
			ParentID:    parentID,
			Timestamp:   timestamp,
			GasLimit:    10_000_000,
			Beneficiary: c.Beneficiary,
		},
		Transactions: txs,
	}
	c.blocks[id] = block

	return block
}

// Extend appends a block with the given transactions to the trunk and returns its id.
func (c *Chain) Extend(txs ...*thor.Transaction) common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.blocks[c.trunk[len(c.trunk)-1]]
	block := c.newBlock(tip, 0, txs)
	c.trunk = append(c.trunk, block.ID)

	return block.ID
}

// ExtendN appends n empty blocks to the trunk.
func (c *Chain) ExtendN(n int) {
	for range n {
		c.Extend()
	}
}

// Fork builds a side branch of len(blocks) blocks on top of the trunk block at height parent.
// Each entry lists the transactions of one block. The trunk is left unchanged.
func (c *Chain) Fork(parent uint32, blocks ...[]*thor.Transaction) []common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.blocks[c.trunk[parent]]
	ids := make([]common.Hash, 0, len(blocks))
	for _, txs := range blocks {
		prev = c.newBlock(prev, 0, txs)
		ids = append(ids, prev.ID)
	}

	return ids
}

// SetTrunk makes the chain ending at tip the trunk.
func (c *Chain) SetTrunk(tip common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()

	block, ok := c.blocks[tip]
	if !ok {
		panic(fmt.Sprintf("unknown block %s", tip.Hex()))
	}

	trunk := make([]common.Hash, block.Number+1)
	for {
		trunk[block.Number] = block.ID
		if block.Number == 0 {
			break
		}
		block = c.blocks[block.ParentID]
	}
	c.trunk = trunk
}

// Reorg replaces the last depth trunk blocks with a branch of length blocks and makes it the trunk.
func (c *Chain) Reorg(depth int, blocks ...[]*thor.Transaction) []common.Hash {
	parent := uint32(c.BestNumber()) - uint32(depth)
	ids := c.Fork(parent, blocks...)
	c.SetTrunk(ids[len(ids)-1])

	return ids
}

// BestNumber returns the height of the trunk tip.
func (c *Chain) BestNumber() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.trunk) - 1
}

// ID returns the id of the trunk block at height n.
func (c *Chain) ID(n uint32) common.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.trunk[n]
}

// Header returns the header of any known block, with trunk status.
func (c *Chain) Header(id common.Hash) *thor.BlockHeader {
	c.mu.Lock()
	defer c.mu.Unlock()

	block, ok := c.blocks[id]
	if !ok {
		return nil
	}

	return c.header(block)
}

func (c *Chain) header(block *thor.ExpandedBlock) *thor.BlockHeader {
	header := block.BlockHeader
	header.IsTrunk = int(header.Number) < len(c.trunk) && c.trunk[header.Number] == header.ID
	return &header
}

// SetTrace registers the call trace of a clause.
func (c *Chain) SetTrace(blockID common.Hash, txIndex, clauseIndex int, trace *thor.CallTrace) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.traces[traceKey(blockID, txIndex, clauseIndex)] = trace
}

// SetAccount registers the state returned for an account at any revision.
func (c *Chain) SetAccount(addr common.Address, account *thor.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts[addr] = account
}

func (c *Chain) resolve(rev thor.Revision) *thor.ExpandedBlock {
	switch {
	case rev == thor.RevisionBest || rev == "":
		return c.blocks[c.trunk[len(c.trunk)-1]]
	case rev == thor.RevisionFinalized:
		return c.blocks[c.trunk[0]]
	case strings.HasPrefix(string(rev), "0x"):
		return c.blocks[common.HexToHash(string(rev))]
	default:
		n, err := strconv.ParseUint(string(rev), 10, 32)
		if err != nil || int(n) >= len(c.trunk) {
			return nil
		}
		return c.blocks[c.trunk[n]]
	}
}

// GetBlock implements thor.Client.
func (c *Chain) GetBlock(_ context.Context, rev thor.Revision) (*thor.BlockHeader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.GetBlockErr; err != nil {
		c.GetBlockErr = nil
		return nil, err
	}

	block := c.resolve(rev)
	if block == nil {
		return nil, nil
	}

	return c.header(block), nil
}

// GetExpandedBlock implements thor.Client.
func (c *Chain) GetExpandedBlock(_ context.Context, rev thor.Revision) (*thor.ExpandedBlock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	block := c.resolve(rev)
	if block == nil {
		return nil, nil
	}

	expanded := *block
	expanded.BlockHeader = *c.header(block)

	return &expanded, nil
}

// TraceClause implements thor.Client.
func (c *Chain) TraceClause(_ context.Context, blockID common.Hash, txIndex, clauseIndex int,
) (*thor.CallTrace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	trace, ok := c.traces[traceKey(blockID, txIndex, clauseIndex)]
	if !ok {
		return nil, fmt.Errorf("no trace for %s", traceKey(blockID, txIndex, clauseIndex))
	}

	return trace, nil
}

// FilterEventLogs implements thor.Client for block ranges, matching on address and topic0.
func (c *Chain) FilterEventLogs(_ context.Context, filter *thor.EventFilter) ([]*thor.EventLog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from, to := uint64(0), uint64(len(c.trunk)-1)
	if filter.Range != nil {
		from, to = filter.Range.From, min(filter.Range.To, to)
	}

	var logs []*thor.EventLog
	for n := from; n <= to; n++ {
		block := c.blocks[c.trunk[n]]
		for _, tx := range block.Transactions {
			for clauseIndex, output := range tx.Outputs {
				for _, ev := range output.Events {
					if !matches(filter.CriteriaSet, ev) {
						continue
					}
					logs = append(logs, &thor.EventLog{
						Address: ev.Address,
						Topics:  ev.Topics,
						Data:    ev.Data,
						Meta: thor.LogMeta{
							BlockID:        block.ID,
							BlockNumber:    block.Number,
							BlockTimestamp: block.Timestamp,
							TxID:           tx.ID,
							TxOrigin:       tx.Origin,
							ClauseIndex:    uint32(clauseIndex),
						},
					})
				}
			}
		}
	}

	if filter.Options != nil {
		offset := min(filter.Options.Offset, uint64(len(logs)))
		end := min(offset+filter.Options.Limit, uint64(len(logs)))
		logs = logs[offset:end]
	}

	return logs, nil
}

func matches(criteria []thor.EventCriteria, ev thor.Event) bool {
	if len(criteria) == 0 {
		return true
	}

	for _, cr := range criteria {
		if cr.Address != nil && *cr.Address != ev.Address {
			continue
		}
		if cr.Topic0 != nil && (len(ev.Topics) == 0 || ev.Topics[0] != *cr.Topic0) {
			continue
		}
		return true
	}

	return false
}

// GetAccount implements thor.Client.
func (c *Chain) GetAccount(_ context.Context, addr common.Address, _ thor.Revision) (*thor.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if account, ok := c.accounts[addr]; ok {
		return account, nil
	}

	return &thor.Account{}, nil
}

// GetCode implements thor.Client.
func (c *Chain) GetCode(context.Context, common.Address, thor.Revision) ([]byte, error) {
	return nil, nil
}

// Explain implements thor.Client.
func (c *Chain) Explain(_ context.Context, req *thor.ExplainRequest, _ thor.Revision) ([]*thor.CallResult, error) {
	results := make([]*thor.CallResult, len(req.Clauses))
	for i := range results {
		results[i] = &thor.CallResult{}
	}

	return results, nil
}

// Lookup returns the header of a block by id, for fork resolution.
func (c *Chain) Lookup(_ context.Context, id common.Hash) (*thor.BlockHeader, error) {
	return c.Header(id), nil
}

func traceKey(blockID common.Hash, txIndex, clauseIndex int) string {
	return fmt.Sprintf("%s/%d/%d", blockID.Hex(), txIndex, clauseIndex)
}
