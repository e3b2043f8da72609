package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// QueryParams represents common query parameters for log retrieval.
type QueryParams struct {
	// Pagination
	Limit  int
	Offset int

	// Block range filtering
	FromBlock *uint32
	ToBlock   *uint32

	// Address filtering, matched against sender, recipient and emitter
	Address string

	// Sorting
	SortOrder string // "asc" or "desc"
}

func NewDefaultQueryParams() *QueryParams {
	return &QueryParams{
		Limit:     DefaultPageLimit,
		Offset:    0,
		SortOrder: "desc",
	}
}

// LogEntry is one event or transfer of an indexed clause.
// @Description An event or VET transfer at its position in the clause
type LogEntry struct {
	BlockNumber uint32  `json:"block_number" example:"19500000"`
	BlockID     string  `json:"block_id" example:"0x0129c1e0..."`
	BlockTime   uint64  `json:"block_time" example:"1700000000"`
	TxID        string  `json:"tx_id"`
	ClauseIndex uint32  `json:"clause_index"`
	LogIndex    uint32  `json:"log_index" description:"Position among all events and transfers of the transaction"`
	Kind        string  `json:"kind" example:"event" enums:"event,transfer"`
	Address     *string `json:"address,omitempty" description:"Emitting contract of an event"`
	Topics      *string `json:"topics,omitempty" description:"Comma separated topics of an event"`
	Data        *string `json:"data,omitempty"`
	Sender      *string `json:"sender,omitempty"`
	Recipient   *string `json:"recipient,omitempty"`
	Amount      *string `json:"amount,omitempty" description:"Transfer amount in wei"`
}

// AccountState is the indexed balance of an account.
// @Description VET and VTHO balance of an account at the indexer head
type AccountState struct {
	Address     string `json:"address"`
	Balance     string `json:"balance" example:"1000000000000000000" description:"VET balance in wei"`
	Energy      string `json:"energy" example:"500000000000000000" description:"VTHO balance in wei at BlockTime"`
	BlockTime   uint64 `json:"block_time" description:"Timestamp the energy was last computed at"`
	BlockNumber uint32 `json:"block_number" description:"Block of the last balance change"`
}

// StatsResponse represents indexer statistics.
// @Description Statistics and status information for an indexer
type StatsResponse struct {
	TotalRows     int64  `json:"total_rows" example:"150000" description:"Total number of indexed rows"`
	EarliestBlock uint32 `json:"earliest_block" example:"19000000" description:"Earliest block with indexed rows"`
	LatestBlock   uint32 `json:"latest_block" example:"19500000" description:"Latest block with indexed rows"`
}

// LogReader is implemented by indexers serving ordered logs.
type LogReader interface {
	QueryLogs(ctx context.Context, params *QueryParams) ([]*LogEntry, int, error)
}

// AccountReader is implemented by indexers serving account balances.
type AccountReader interface {
	Account(ctx context.Context, addr common.Address) (*AccountState, error)
}

// StatsReader is implemented by indexers reporting row statistics.
type StatsReader interface {
	Stats(ctx context.Context) (*StatsResponse, error)
}
