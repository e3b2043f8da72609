package indexer

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrConsistency is wrapped by indexers when a block contradicts the indexed state.
// It is fatal to the processor running the indexer.
var ErrConsistency = errors.New("inconsistent index state")

// ErrNotFound is returned by readers for keys the index does not hold.
var ErrNotFound = errors.New("not found")

// ConsistencyError locates a consistency failure in the chain.
type ConsistencyError struct {
	BlockNumber uint32
	BlockID     common.Hash
	TxID        common.Hash
	Details     string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%v at block %d (%s) tx %s: %s",
		ErrConsistency, e.BlockNumber, e.BlockID.Hex(), e.TxID.Hex(), e.Details)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrConsistency
}

// NewConsistencyError creates a new ConsistencyError.
func NewConsistencyError(blockNumber uint32, blockID, txID common.Hash, details string) error {
	return &ConsistencyError{
		BlockNumber: blockNumber,
		BlockID:     blockID,
		TxID:        txID,
		Details:     details,
	}
}
