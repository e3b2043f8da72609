package processor

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/metrics"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// fastForward applies head+1..target in batches without snapshots. A batch is
// committed with its head when the indexer asks for a flush, when target is
// reached, or when a shutdown is requested. It returns the committed head.
func (p *Processor) fastForward(ctx context.Context, head *thor.BlockHeader, target uint32) (*thor.BlockHeader, error) {
	p.log.Infow("fast-forwarding", "from", head.Number+1, "to", target)

	work := context.WithoutCancel(ctx)

	for head.Number < target && ctx.Err() == nil {
		start := time.Now()

		var (
			last  *thor.BlockHeader
			count int
		)

		err := db.RunInTx(work, p.store.DB(), p.maintenance, p.name, func(tx *sql.Tx) error {
			last, count = head, 0

			for last.Number < target {
				n, err := p.nextBlock(work, last.Number+1, target)
				if err != nil {
					return err
				}

				block, err := p.fetchBlock(work, n)
				if err != nil {
					return err
				}
				if n == last.Number+1 && block.ParentID != last.ID {
					return NewDiscontinuityError(n, last.ID, block.ParentID)
				}

				inserted, err := p.idx.ProcessBlock(work, p.blockContext(tx, block, false))
				if err != nil {
					return fmt.Errorf("failed to process block %d (%s): %w", n, block.ID.Hex(), err)
				}

				count += inserted
				last = &block.BlockHeader

				if p.needFlush(count) || ctx.Err() != nil {
					break
				}
			}

			return p.store.SaveHead(tx, p.name, last.ID)
		})
		if err != nil {
			return nil, err
		}

		metrics.BatchLog(p.name, modeFastForward, last.Number-head.Number, count, time.Since(start))
		p.log.Infow("fast-forward batch committed",
			"from", head.Number+1,
			"to", last.Number,
			"target", target,
			"rows", count,
		)

		head = last
		p.setHead(head, modeFastForward)

		if err := p.prune(head.Number); err != nil {
			return nil, err
		}
	}

	return head, nil
}

func (p *Processor) needFlush(count int) bool {
	if flusher, ok := p.idx.(indexer.Flusher); ok {
		return flusher.NeedFlush(count)
	}
	return count >= p.opts.FlushThreshold
}

// nextBlock returns the next block to apply in [from, to]. Indexers may skip blocks
// without data for them, but never past a protocol fork block.
func (p *Processor) nextBlock(ctx context.Context, from, to uint32) (uint32, error) {
	skipper, ok := p.idx.(indexer.BlockSkipper)
	if !ok || from >= to {
		return from, nil
	}

	limit := min(to, p.nextForkBlock(from))

	n, err := skipper.NextBlock(ctx, from, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to select block after %d: %w", from-1, err)
	}

	return min(max(n, from), limit), nil
}

// nextForkBlock returns the first fork block at or after from, or the max uint32.
func (p *Processor) nextForkBlock(from uint32) uint32 {
	i := sort.Search(len(p.opts.ForkBlocks), func(i int) bool { return p.opts.ForkBlocks[i] >= from })
	if i == len(p.opts.ForkBlocks) {
		return ^uint32(0)
	}
	return p.opts.ForkBlocks[i]
}
