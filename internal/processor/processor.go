// Package processor runs an indexer over the chain, keeping its head and data
// consistent with the trunk across reorganizations.
package processor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/metrics"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

const (
	modeGenesis     = "genesis"
	modeFastForward = "fast_forward"
	modeSteady      = "steady"
)

// Headers looks up block headers by id, trunk or not.
type Headers interface {
	Get(ctx context.Context, id common.Hash) (*thor.BlockHeader, error)
}

type clientHeaders struct {
	client thor.Client
}

func (c clientHeaders) Get(ctx context.Context, id common.Hash) (*thor.BlockHeader, error) {
	return c.client.GetBlock(ctx, thor.RevisionID(id))
}

// Options tunes a processor.
type Options struct {
	// Window is the number of trailing blocks that may still be reorganized.
	Window uint32
	// SamplingInterval is the pause between two iterations of the loop.
	SamplingInterval time.Duration
	// ForkBlocks are never skipped by fast-forward, sorted ascending.
	ForkBlocks []uint32
	// FlushThreshold is the row count committing a fast-forward batch for indexers without a Flusher.
	FlushThreshold int
	// BornAt overrides the indexer's own first block when non-zero.
	BornAt uint32
}

// NewOptions builds the options of the indexer cfg from the engine configuration.
func NewOptions(engine config.EngineConfig, cfg config.IndexerConfig) Options {
	forkBlocks := slices.Clone(engine.ForkBlocks)
	slices.Sort(forkBlocks)

	return Options{
		Window:           engine.ReversibleWindow,
		SamplingInterval: engine.SamplingInterval.Duration,
		ForkBlocks:       forkBlocks,
		FlushThreshold:   cfg.FlushThreshold,
		BornAt:           cfg.BornAt,
	}
}

// Status is a point in time view of a processor.
type Status struct {
	Name        string    `json:"name"`
	HeadNumber  uint32    `json:"head_number"`
	HeadID      string    `json:"head_id"`
	Mode        string    `json:"mode"`
	LastError   string    `json:"last_error,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// Processor applies the blocks of the trunk to one indexer in strictly increasing order.
// Every head move is committed in the same transaction as the data and snapshots it covers.
type Processor struct {
	idx         indexer.Indexer
	name        string
	opts        Options
	client      thor.Client
	headers     Headers
	store       *store.Store
	maintenance db.Maintenance
	log         *logger.Logger

	// head is only touched by the loop goroutine
	head *thor.BlockHeader

	statusMu sync.RWMutex
	status   Status

	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
	runErr   error
}

// New creates a processor for idx. headers may be nil, blocks are then looked up through client.
func New(
	idx indexer.Indexer,
	opts Options,
	client thor.Client,
	headers Headers,
	st *store.Store,
	maintenance db.Maintenance,
	log *logger.Logger,
) (*Processor, error) {
	if idx == nil {
		return nil, errors.New("indexer is required")
	}
	if client == nil {
		return nil, errors.New("thor client is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	if opts.Window == 0 {
		opts.Window = config.DefaultReversibleWindow
	}
	if opts.SamplingInterval <= 0 {
		opts.SamplingInterval = time.Second
	}
	if opts.FlushThreshold <= 0 {
		opts.FlushThreshold = config.DefaultFlushThreshold
	}
	if headers == nil {
		headers = clientHeaders{client: client}
	}
	if maintenance == nil {
		maintenance = &db.NoOpMaintenance{}
	}

	return &Processor{
		idx:         idx,
		name:        idx.Name(),
		opts:        opts,
		client:      client,
		headers:     headers,
		store:       st,
		maintenance: maintenance,
		log:         log.WithComponent(internalcommon.ComponentProcessor).WithField("indexer", idx.Name()),
		status:      Status{Name: idx.Name()},
		done:        make(chan struct{}),
	}, nil
}

// Name returns the name of the indexer the processor runs.
func (p *Processor) Name() string {
	return p.name
}

// Indexer returns the indexer the processor runs.
func (p *Processor) Indexer() indexer.Indexer {
	return p.idx
}

// Status returns the current status of the processor.
func (p *Processor) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

// Start runs the loop in the background until Stop is called or ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	go func() {
		_ = p.Run(ctx)
	}()
}

// Stop requests a shutdown and waits for the loop to exit. It returns the error the loop failed with,
// or nil when the processor was never started.
func (p *Processor) Stop() error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	<-p.done
	return p.runErr
}

// Done is closed once the loop has exited.
func (p *Processor) Done() <-chan struct{} {
	return p.done
}

// Run executes the processing loop until ctx is cancelled or a fatal error occurs.
// A cancellation is a clean shutdown and returns nil.
func (p *Processor) Run(ctx context.Context) (err error) {
	defer p.doneOnce.Do(func() {
		p.runErr = err
		close(p.done)
	})

	p.log.Infow("processor started",
		"window", p.opts.Window,
		"sampling_interval", p.opts.SamplingInterval,
		"flush_threshold", p.opts.FlushThreshold,
	)
	metrics.ComponentHealthSet(p.name, true)

	timer := time.NewTimer(p.opts.SamplingInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("processor stopped")
			return nil
		case <-timer.C:
		}

		err = p.tick(ctx)
		p.setError(err)

		switch {
		case err == nil:
		case ctx.Err() != nil:
			p.log.Info("processor stopped")
			return nil
		case IsFatal(err):
			metrics.ErrorInc(p.name, "fatal")
			metrics.ComponentHealthSet(p.name, false)
			p.log.Errorw("processor halted", "error", err)
			return err
		default:
			metrics.ErrorInc(p.name, "transient")
			p.log.Warnw("iteration failed, retrying", "error", err)
		}

		timer.Reset(p.opts.SamplingInterval)
	}
}

// tick runs one iteration of the loop.
func (p *Processor) tick(ctx context.Context) error {
	if err := p.latestTrunkCheck(ctx); err != nil {
		return err
	}

	head, err := p.loadHead(ctx)
	if err != nil {
		return err
	}

	if head == nil {
		if head, err = p.processGenesis(ctx); err != nil {
			return err
		}
	}

	best, err := p.client.GetBlock(ctx, thor.RevisionBest)
	if err != nil {
		return fmt.Errorf("failed to get best block: %w", err)
	}
	if best == nil {
		return fmt.Errorf("%w: best", ErrBlockUnavailable)
	}

	if best.Number <= head.Number {
		return nil
	}

	if best.Number-head.Number > p.opts.Window {
		if head, err = p.fastForward(ctx, head, best.Number-p.opts.Window); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	return p.applyRange(ctx, head, best.Number)
}

// loadHead returns the head header, nil when the indexer has not been seeded yet.
func (p *Processor) loadHead(ctx context.Context) (*thor.BlockHeader, error) {
	if p.head != nil {
		return p.head, nil
	}

	id, ok, err := p.store.Head(p.store.DB(), p.name)
	if err != nil || !ok {
		return nil, err
	}

	header, err := p.headers.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get head block %s: %w", id.Hex(), err)
	}
	if header == nil {
		return nil, fmt.Errorf("%w: head %s", ErrBlockUnavailable, id.Hex())
	}

	p.setHead(header, "")
	p.log.Infow("head loaded", "number", header.Number, "id", header.ID.Hex())

	return header, nil
}

func (p *Processor) setHead(header *thor.BlockHeader, mode string) {
	p.head = header
	metrics.HeadBlockSet(p.name, header.Number)

	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.HeadNumber = header.Number
	p.status.HeadID = header.ID.Hex()
	if mode != "" {
		p.status.Mode = mode
	}
	p.status.LastUpdated = time.Now().UTC()
}

func (p *Processor) setError(err error) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	if err == nil {
		p.status.LastError = ""
		return
	}
	p.status.LastError = err.Error()
}

// processGenesis seeds the indexer at block BornAt-1.
func (p *Processor) processGenesis(ctx context.Context) (*thor.BlockHeader, error) {
	bornAt := p.opts.BornAt
	if bornAt == 0 {
		var err error
		if bornAt, err = p.idx.BornAt(ctx); err != nil {
			return nil, fmt.Errorf("failed to get first block: %w", err)
		}
	}
	bornAt = max(bornAt, 1)

	work := context.WithoutCancel(ctx)

	block, err := p.client.GetExpandedBlock(work, thor.RevisionNumber(bornAt-1))
	if err != nil {
		return nil, fmt.Errorf("failed to get genesis block %d: %w", bornAt-1, err)
	}
	if block == nil {
		return nil, fmt.Errorf("%w: genesis %d", ErrBlockUnavailable, bornAt-1)
	}

	start := time.Now()
	err = db.RunInTx(work, p.store.DB(), p.maintenance, p.name, func(tx *sql.Tx) error {
		if err := p.idx.ProcessGenesis(work, p.blockContext(tx, block, false)); err != nil {
			return fmt.Errorf("failed to process genesis block %d: %w", block.Number, err)
		}
		return p.store.SaveHead(tx, p.name, block.ID)
	})
	if err != nil {
		return nil, err
	}

	header := block.BlockHeader
	p.setHead(&header, modeGenesis)
	metrics.BatchLog(p.name, modeGenesis, 1, 0, time.Since(start))
	p.log.Infow("genesis processed", "number", header.Number, "id", header.ID.Hex())

	return &header, nil
}

// applyRange applies head+1..to in one transaction, snapshotting every block.
func (p *Processor) applyRange(ctx context.Context, head *thor.BlockHeader, to uint32) error {
	work := context.WithoutCancel(ctx)
	start := time.Now()

	var (
		last  = head
		count int
	)

	err := db.RunInTx(work, p.store.DB(), p.maintenance, p.name, func(tx *sql.Tx) error {
		last, count = head, 0

		for n := head.Number + 1; n <= to; n++ {
			block, err := p.fetchBlock(work, n)
			if err != nil {
				return err
			}
			if block.ParentID != last.ID {
				return NewDiscontinuityError(n, last.ID, block.ParentID)
			}

			inserted, err := p.idx.ProcessBlock(work, p.blockContext(tx, block, true))
			if err != nil {
				return fmt.Errorf("failed to process block %d (%s): %w", n, block.ID.Hex(), err)
			}

			count += inserted
			last = &block.BlockHeader
		}

		return p.store.SaveHead(tx, p.name, last.ID)
	})
	if err != nil {
		return err
	}

	p.setHead(last, modeSteady)
	metrics.BatchLog(p.name, modeSteady, last.Number-head.Number, count, time.Since(start))
	p.log.Debugw("blocks applied",
		"from", head.Number+1,
		"to", last.Number,
		"rows", count,
		"head", last.ID.Hex(),
	)

	return p.prune(last.Number)
}

func (p *Processor) fetchBlock(ctx context.Context, number uint32) (*thor.ExpandedBlock, error) {
	block, err := p.client.GetExpandedBlock(ctx, thor.RevisionNumber(number))
	if err != nil {
		return nil, fmt.Errorf("failed to get block %d: %w", number, err)
	}
	if block == nil {
		return nil, fmt.Errorf("%w: %d", ErrBlockUnavailable, number)
	}
	return block, nil
}

func (p *Processor) blockContext(tx *sql.Tx, block *thor.ExpandedBlock, saveSnapshot bool) *indexer.BlockContext {
	return &indexer.BlockContext{
		Tx:           tx,
		Block:        block,
		SaveSnapshot: saveSnapshot,
		Snapshot: func(payload any) error {
			if !saveSnapshot {
				return nil
			}
			return p.store.SaveSnapshot(tx, p.name, block.ID, payload)
		},
		Client: p.client,
	}
}

// Close releases the resources of the indexer.
func (p *Processor) Close() error {
	if closer, ok := p.idx.(indexer.Closer); ok {
		return closer.Close()
	}
	return nil
}
