package fork

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownBlock is returned when a block on the walked path cannot be found.
var ErrUnknownBlock = errors.New("unknown block")

// DepthExceededError is returned when the common ancestor lies deeper than the reversible window.
type DepthExceededError struct {
	Tip1   common.Hash
	Tip2   common.Hash
	Window uint32
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("fork of %s and %s is deeper than the reversible window of %d blocks",
		e.Tip1.Hex(), e.Tip2.Hex(), e.Window)
}

// NewDepthExceededError creates a new DepthExceededError.
func NewDepthExceededError(tip1, tip2 common.Hash, window uint32) error {
	return &DepthExceededError{
		Tip1:   tip1,
		Tip2:   tip2,
		Window: window,
	}
}

// IsDepthExceeded reports whether err is, or wraps, a DepthExceededError.
func IsDepthExceeded(err error) bool {
	var depthErr *DepthExceededError
	return errors.As(err, &depthErr)
}
