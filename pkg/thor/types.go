package thor

import (
	"encoding/binary"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// PrototypeAddress is the builtin contract managing masters, users and sponsors of contracts.
	PrototypeAddress = common.HexToAddress("0x000000000000000000000050726f746f74797065")
	// EnergyAddress is the builtin VTHO token contract.
	EnergyAddress = common.HexToAddress("0x0000000000000000000000000000456e65726779")
)

// NumberOf returns the block number encoded in the first 4 bytes of a block id.
func NumberOf(id common.Hash) uint32 {
	return binary.BigEndian.Uint32(id[:4])
}

// Revision selects a block: a decimal number, a block id, "best" or "finalized".
type Revision string

const (
	RevisionBest      Revision = "best"
	RevisionFinalized Revision = "finalized"
)

// RevisionNumber selects the trunk block at the given height.
func RevisionNumber(n uint32) Revision {
	return Revision(strconv.FormatUint(uint64(n), 10))
}

// RevisionID selects a block by id, trunk or not.
func RevisionID(id common.Hash) Revision {
	return Revision(id.Hex())
}

// BlockHeader is the summary of a block. IsTrunk and IsFinalized are only valid at the time
// the header was fetched, every other field is immutable for a given id.
type BlockHeader struct {
	Number       uint32         `json:"number"`
	ID           common.Hash    `json:"id"`
	Size         uint32         `json:"size"`
	ParentID     common.Hash    `json:"parentID"`
	Timestamp    uint64         `json:"timestamp"`
	GasLimit     uint64         `json:"gasLimit"`
	Beneficiary  common.Address `json:"beneficiary"`
	GasUsed      uint64         `json:"gasUsed"`
	TotalScore   uint64         `json:"totalScore"`
	TxsRoot      common.Hash    `json:"txsRoot"`
	StateRoot    common.Hash    `json:"stateRoot"`
	ReceiptsRoot common.Hash    `json:"receiptsRoot"`
	Signer       common.Address `json:"signer"`
	IsTrunk      bool           `json:"isTrunk"`
	IsFinalized  bool           `json:"isFinalized"`
}

// ExpandedBlock is a block with its transactions and their receipts inlined.
type ExpandedBlock struct {
	BlockHeader
	Transactions []*Transaction `json:"transactions"`
}

// Transaction is a transaction together with its receipt.
type Transaction struct {
	ID           common.Hash     `json:"id"`
	ChainTag     uint8           `json:"chainTag"`
	BlockRef     string          `json:"blockRef"`
	Expiration   uint32          `json:"expiration"`
	Clauses      []Clause        `json:"clauses"`
	GasPriceCoef uint8           `json:"gasPriceCoef"`
	Gas          uint64          `json:"gas"`
	Origin       common.Address  `json:"origin"`
	Delegator    *common.Address `json:"delegator"`
	Nonce        string          `json:"nonce"`
	DependsOn    *common.Hash    `json:"dependsOn"`
	Size         uint32          `json:"size"`
	GasUsed      uint64          `json:"gasUsed"`
	GasPayer     common.Address  `json:"gasPayer"`
	Paid         *hexutil.Big    `json:"paid"`
	Reward       *hexutil.Big    `json:"reward"`
	Reverted     bool            `json:"reverted"`
	Outputs      []Output        `json:"outputs"`
}

// Clause is a single call of a multi-clause transaction.
type Clause struct {
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
	Data  hexutil.Bytes   `json:"data"`
}

// Output holds what one clause produced. Reverted transactions have no outputs.
type Output struct {
	ContractAddress *common.Address `json:"contractAddress"`
	Events          []Event         `json:"events"`
	Transfers       []Transfer      `json:"transfers"`
}

// Event is a contract log emitted by a clause.
type Event struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

// Transfer is a VET value transfer made by a clause.
type Transfer struct {
	Sender    common.Address `json:"sender"`
	Recipient common.Address `json:"recipient"`
	Amount    *hexutil.Big   `json:"amount"`
}

// Call trace node types.
const (
	CallTypeCreate       = "CREATE"
	CallTypeCreate2      = "CREATE2"
	CallTypeCall         = "CALL"
	CallTypeCallCode     = "CALLCODE"
	CallTypeDelegateCall = "DELEGATECALL"
	CallTypeStaticCall   = "STATICCALL"
)

// CallTrace is a node of the call tracer output for one clause.
// For CREATE and CREATE2 nodes To is the address of the created contract.
type CallTrace struct {
	Type    string         `json:"type"`
	From    common.Address `json:"from"`
	To      common.Address `json:"to"`
	Value   *hexutil.Big   `json:"value"`
	Gas     *hexutil.Big   `json:"gas,omitempty"`
	GasUsed *hexutil.Big   `json:"gasUsed,omitempty"`
	Input   hexutil.Bytes  `json:"input"`
	Output  hexutil.Bytes  `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
	Calls   []*CallTrace   `json:"calls,omitempty"`
}

// HasValue reports whether the call moved a non-zero amount of VET.
func (c *CallTrace) HasValue() bool {
	return c.Value != nil && c.Value.ToInt().Sign() > 0
}

// Account is the state of an account at a revision.
type Account struct {
	Balance *hexutil.Big `json:"balance"`
	Energy  *hexutil.Big `json:"energy"`
	HasCode bool         `json:"hasCode"`
}

// EventFilter is the body of an event log query.
type EventFilter struct {
	Range       *FilterRange    `json:"range,omitempty"`
	Options     *FilterOptions  `json:"options,omitempty"`
	CriteriaSet []EventCriteria `json:"criteriaSet,omitempty"`
	Order       string          `json:"order,omitempty"`
}

// FilterRange bounds a log query. Unit is "block" or "time".
type FilterRange struct {
	Unit string `json:"unit"`
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// FilterOptions paginates a log query.
type FilterOptions struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventCriteria matches logs by emitter and topics, nil fields match anything.
type EventCriteria struct {
	Address *common.Address `json:"address,omitempty"`
	Topic0  *common.Hash    `json:"topic0,omitempty"`
	Topic1  *common.Hash    `json:"topic1,omitempty"`
	Topic2  *common.Hash    `json:"topic2,omitempty"`
	Topic3  *common.Hash    `json:"topic3,omitempty"`
	Topic4  *common.Hash    `json:"topic4,omitempty"`
}

// EventLog is a log returned by an event log query.
type EventLog struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
	Meta    LogMeta        `json:"meta"`
}

// LogMeta locates a log in the chain.
type LogMeta struct {
	BlockID        common.Hash    `json:"blockID"`
	BlockNumber    uint32         `json:"blockNumber"`
	BlockTimestamp uint64         `json:"blockTimestamp"`
	TxID           common.Hash    `json:"txID"`
	TxOrigin       common.Address `json:"txOrigin"`
	ClauseIndex    uint32         `json:"clauseIndex"`
}

// ExplainRequest simulates clauses against a revision.
type ExplainRequest struct {
	Clauses []Clause        `json:"clauses"`
	Gas     uint64          `json:"gas,omitempty"`
	Caller  *common.Address `json:"caller,omitempty"`
}

// CallResult is the outcome of one simulated clause.
type CallResult struct {
	Data      hexutil.Bytes `json:"data"`
	Events    []Event       `json:"events"`
	Transfers []Transfer    `json:"transfers"`
	GasUsed   uint64        `json:"gasUsed"`
	Reverted  bool          `json:"reverted"`
	VMError   string        `json:"vmError"`
}
