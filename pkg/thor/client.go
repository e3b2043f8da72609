package thor

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Client defines the interface for the Thor node REST API used by the indexer.
// Block getters return nil, nil when the node does not know the requested revision.
type Client interface {
	// GetBlock retrieves the header of the block at the given revision.
	GetBlock(ctx context.Context, rev Revision) (*BlockHeader, error)

	// GetExpandedBlock retrieves a block with transactions and receipts.
	GetExpandedBlock(ctx context.Context, rev Revision) (*ExpandedBlock, error)

	// TraceClause runs the call tracer on a single clause of a transaction.
	TraceClause(ctx context.Context, blockID common.Hash, txIndex, clauseIndex int) (*CallTrace, error)

	// FilterEventLogs retrieves the logs matching the filter.
	FilterEventLogs(ctx context.Context, filter *EventFilter) ([]*EventLog, error)

	// GetAccount retrieves balance and energy of an account.
	GetAccount(ctx context.Context, addr common.Address, rev Revision) (*Account, error)

	// GetCode retrieves the code deployed at an address.
	GetCode(ctx context.Context, addr common.Address, rev Revision) ([]byte, error)

	// Explain simulates clauses without sending a transaction.
	Explain(ctx context.Context, req *ExplainRequest, rev Revision) ([]*CallResult, error)
}
