// Package fork finds the common ancestor of two chain tips.
package fork

import (
	"context"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// Lookup returns the header of any known block by id, trunk or not.
// It returns nil, nil when the block is unknown.
type Lookup func(ctx context.Context, id common.Hash) (*thor.BlockHeader, error)

// Fork describes how two tips diverge.
type Fork struct {
	// Ancestor is the newest block both tips descend from.
	Ancestor *thor.BlockHeader
	// Trunk holds the blocks from just after Ancestor up to the first tip, oldest first.
	Trunk []*thor.BlockHeader
	// Branch holds the blocks from just after Ancestor up to the second tip, oldest first.
	Branch []*thor.BlockHeader
}

// Resolve walks both tips back through their parents until they meet.
// The higher tip is stepped back first, on equal height both step together.
// Either side growing longer than window blocks fails with DepthExceededError.
// Equal tips resolve to themselves with empty Trunk and Branch.
func Resolve(ctx context.Context, tip1, tip2 *thor.BlockHeader, lookup Lookup, window uint32) (*Fork, error) {
	var trunk, branch []*thor.BlockHeader

	h1, h2 := tip1, tip2
	for h1.ID != h2.ID {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stepFirst := h1.Number >= h2.Number
		stepSecond := h2.Number >= h1.Number

		if stepFirst {
			trunk = append(trunk, h1)
		}
		if stepSecond {
			branch = append(branch, h2)
		}

		if uint32(len(trunk)) > window || uint32(len(branch)) > window {
			DepthExceededInc()
			return nil, NewDepthExceededError(tip1.ID, tip2.ID, window)
		}

		var err error
		if stepFirst {
			if h1, err = parentOf(ctx, h1, lookup); err != nil {
				return nil, err
			}
		}
		if stepSecond {
			if h2, err = parentOf(ctx, h2, lookup); err != nil {
				return nil, err
			}
		}
	}

	slices.Reverse(trunk)
	slices.Reverse(branch)

	ForkResolvedLog(len(branch))

	return &Fork{
		Ancestor: h1,
		Trunk:    trunk,
		Branch:   branch,
	}, nil
}

func parentOf(ctx context.Context, header *thor.BlockHeader, lookup Lookup) (*thor.BlockHeader, error) {
	if header.Number == 0 {
		return nil, fmt.Errorf("%w: genesis %s has no parent", ErrUnknownBlock, header.ID.Hex())
	}

	parent, err := lookup(ctx, header.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent of block %d: %w", header.Number, err)
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: parent %s of block %d", ErrUnknownBlock, header.ParentID.Hex(), header.Number)
	}

	return parent, nil
}
