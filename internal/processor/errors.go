package processor

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/internal/fork"
	"github.com/goran-ethernal/ThorIndexor/internal/reconcile"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
)

// ErrConsistency is wrapped by errors reporting a block that contradicts the indexed state.
var ErrConsistency = indexer.ErrConsistency

// ErrBlockUnavailable is returned when the node does not serve a block the processor needs yet.
var ErrBlockUnavailable = errors.New("block not available")

// DiscontinuityError is returned when a fetched block does not extend the previously applied one.
// It means a reorganization happened while the batch was being applied.
type DiscontinuityError struct {
	Number   uint32
	Expected common.Hash
	Got      common.Hash
}

func (e *DiscontinuityError) Error() string {
	return fmt.Sprintf("block %d has parent %s, expected %s", e.Number, e.Got.Hex(), e.Expected.Hex())
}

// NewDiscontinuityError creates a new DiscontinuityError.
func NewDiscontinuityError(number uint32, expected, got common.Hash) error {
	return &DiscontinuityError{
		Number:   number,
		Expected: expected,
		Got:      got,
	}
}

// IsFatal reports whether err must stop the processor.
// Forks deeper than the reversible window and consistency failures are fatal,
// everything else is retried at the next tick.
func IsFatal(err error) bool {
	return fork.IsDepthExceeded(err) ||
		errors.Is(err, ErrConsistency) ||
		errors.Is(err, reconcile.ErrInconsistent)
}
