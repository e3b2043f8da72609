// Package watcher follows the best block of the node and reports trunk extensions and forks.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/fork"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// Options tunes a watcher.
type Options struct {
	// Window bounds the depth of the forks the watcher resolves.
	Window uint32
	// SamplingInterval is the pause between two polls of the best block.
	SamplingInterval time.Duration
}

// Watcher polls the best block and notifies its notifiers of every change.
// It only keeps the last seen head and never touches the index.
type Watcher struct {
	client    thor.Client
	lookup    fork.Lookup
	opts      Options
	notifiers []Notifier
	log       *logger.Logger

	mu   sync.RWMutex
	head *thor.BlockHeader
}

// New creates a watcher. lookup may be nil, parents are then fetched through client.
func New(
	client thor.Client,
	lookup fork.Lookup,
	opts Options,
	log *logger.Logger,
	notifiers ...Notifier,
) (*Watcher, error) {
	if client == nil {
		return nil, errors.New("thor client is required")
	}
	if opts.Window == 0 {
		return nil, errors.New("window must be positive")
	}
	if opts.SamplingInterval <= 0 {
		opts.SamplingInterval = time.Second
	}
	if lookup == nil {
		lookup = func(ctx context.Context, id common.Hash) (*thor.BlockHeader, error) {
			return client.GetBlock(ctx, thor.RevisionID(id))
		}
	}

	return &Watcher{
		client:    client,
		lookup:    lookup,
		opts:      opts,
		notifiers: notifiers,
		log:       log.WithComponent(internalcommon.ComponentWatcher),
	}, nil
}

// Head returns the last head seen, nil before the first successful poll.
func (w *Watcher) Head() *thor.BlockHeader {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.head
}

// Run polls until ctx is cancelled. Failed polls are logged and retried.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Infow("watcher started", "sampling_interval", w.opts.SamplingInterval, "window", w.opts.Window)

	ticker := time.NewTicker(w.opts.SamplingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return nil
		case <-ticker.C:
		}

		if err := w.poll(ctx); err != nil && ctx.Err() == nil {
			w.log.Warnw("poll failed", "error", err)
		}
	}
}

// poll fetches the best block and notifies the change since the last head.
func (w *Watcher) poll(ctx context.Context) error {
	best, err := w.client.GetBlock(ctx, thor.RevisionBest)
	if err != nil {
		return fmt.Errorf("failed to get best block: %w", err)
	}
	if best == nil {
		return errors.New("node returned no best block")
	}

	head := w.Head()

	switch {
	case head == nil, best.ParentID == head.ID:
		w.notifyHeads(ctx, []*thor.BlockHeader{best})
	case best.ID == head.ID:
		return nil
	default:
		f, err := fork.Resolve(ctx, best, head, w.lookup, w.opts.Window)
		if fork.IsDepthExceeded(err) {
			// the last head is too far behind, restart from best
			w.logReset(ctx, head, best, err)
			w.notifyHeads(ctx, []*thor.BlockHeader{best})
			break
		}
		if err != nil {
			return err
		}

		if len(f.Branch) == 0 {
			w.notifyHeads(ctx, f.Trunk)
		} else {
			w.notifyFork(ctx, f)
		}
	}

	w.mu.Lock()
	w.head = best
	w.mu.Unlock()

	return nil
}

// logReset reports a head reset. A head still on the trunk only fell behind.
func (w *Watcher) logReset(ctx context.Context, head, best *thor.BlockHeader, cause error) {
	current, err := w.client.GetBlock(ctx, thor.RevisionID(head.ID))
	if err == nil && current != nil && current.IsTrunk {
		w.log.Infow("node moved past the window, resetting head",
			"head", head.Number,
			"best", best.Number,
		)
		return
	}

	w.log.Errorw("fork deeper than the window, resetting head",
		"head", head.Number,
		"best", best.Number,
		"error", cause,
	)
}

func (w *Watcher) notifyHeads(ctx context.Context, heads []*thor.BlockHeader) {
	if len(heads) == 0 {
		return
	}

	for _, n := range w.notifiers {
		if err := n.NewHeads(ctx, heads); err != nil {
			NotifyErrorInc(EventNewHeads)
			w.log.Warnw("failed to notify new heads", "error", err)
		}
	}
}

func (w *Watcher) notifyFork(ctx context.Context, f *fork.Fork) {
	for _, n := range w.notifiers {
		if err := n.Fork(ctx, f); err != nil {
			NotifyErrorInc(EventFork)
			w.log.Warnw("failed to notify fork", "error", err)
		}
	}
}
