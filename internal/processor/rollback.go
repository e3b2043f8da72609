package processor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/fork"
	"github.com/goran-ethernal/ThorIndexor/internal/metrics"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// latestTrunkCheck makes sure the head is on the trunk. When it is not, the
// snapshots of the abandoned blocks are reverted newest first and the head
// moves back to the common ancestor of the head and the best block.
func (p *Processor) latestTrunkCheck(ctx context.Context) error {
	head, err := p.loadHead(ctx)
	if err != nil || head == nil {
		return err
	}

	current, err := p.client.GetBlock(ctx, thor.RevisionID(head.ID))
	if err != nil {
		return fmt.Errorf("failed to check head %s: %w", head.ID.Hex(), err)
	}
	if current == nil {
		return fmt.Errorf("%w: head %s", ErrBlockUnavailable, head.ID.Hex())
	}

	if current.IsTrunk {
		return p.prune(head.Number)
	}

	// Resolve against the trunk block at the head's height, or best when the
	// trunk is now shorter than head.
	trunk, err := p.client.GetBlock(ctx, thor.RevisionNumber(head.Number))
	if err != nil {
		return fmt.Errorf("failed to get trunk block %d: %w", head.Number, err)
	}
	if trunk == nil {
		if trunk, err = p.client.GetBlock(ctx, thor.RevisionBest); err != nil {
			return fmt.Errorf("failed to get best block: %w", err)
		}
		if trunk == nil {
			return fmt.Errorf("%w: best", ErrBlockUnavailable)
		}
	}

	f, err := fork.Resolve(ctx, trunk, head, p.headers.Get, p.opts.Window)
	if err != nil {
		return fmt.Errorf("failed to resolve fork of head %d: %w", head.Number, err)
	}

	snapshots, err := p.store.Snapshots(p.store.DB(), p.name, p.windowStart(head.Number), head.Number)
	if err != nil {
		return err
	}

	affected := make([]*store.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s.BlockNumber > f.Ancestor.Number {
			affected = append(affected, s)
		}
	}

	p.log.Warnw("head left the trunk, rolling back",
		"head", head.Number,
		"head_id", head.ID.Hex(),
		"ancestor", f.Ancestor.Number,
		"ancestor_id", f.Ancestor.ID.Hex(),
		"abandoned_blocks", len(f.Branch),
		"snapshots", len(affected),
	)

	if err := p.rollback(ctx, f.Ancestor, affected); err != nil {
		return err
	}

	return p.prune(f.Ancestor.Number)
}

// rollback reverts snapshots newest first and moves the head to ancestor, atomically.
func (p *Processor) rollback(ctx context.Context, ancestor *thor.BlockHeader, snapshots []*store.Snapshot) error {
	work := context.WithoutCancel(ctx)
	start := time.Now()

	err := db.RunInTx(work, p.store.DB(), p.maintenance, p.name, func(tx *sql.Tx) error {
		for i := len(snapshots) - 1; i >= 0; i-- {
			s := snapshots[i]
			if err := p.idx.Revert(work, tx, s); err != nil {
				return fmt.Errorf("failed to revert block %d (%s): %w", s.BlockNumber, s.BlockID.Hex(), err)
			}
			if err := p.store.DeleteSnapshot(tx, p.name, s.BlockID); err != nil {
				return err
			}
		}
		return p.store.SaveHead(tx, p.name, ancestor.ID)
	})
	if err != nil {
		return err
	}

	p.setHead(ancestor, "")
	metrics.RollbackLog(p.name, len(snapshots))
	p.log.Infow("rolled back",
		"head", ancestor.Number,
		"head_id", ancestor.ID.Hex(),
		"reverted", len(snapshots),
		"duration", time.Since(start),
	)

	return nil
}

// prune drops the snapshots that fell out of the reversible window of head.
func (p *Processor) prune(head uint32) error {
	if head <= p.opts.Window {
		return nil
	}

	unlock := p.maintenance.AcquireOperationLock()
	defer unlock()

	_, err := p.store.PruneSnapshots(p.store.DB(), p.name, head-p.opts.Window)
	return err
}

func (p *Processor) windowStart(head uint32) uint32 {
	if head <= p.opts.Window {
		return 0
	}
	return head - p.opts.Window
}
