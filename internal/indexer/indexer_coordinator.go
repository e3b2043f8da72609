package indexer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	internalcommon "github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/processor"
	"github.com/goran-ethernal/ThorIndexor/internal/store"
	"github.com/goran-ethernal/ThorIndexor/internal/watcher"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"golang.org/x/sync/errgroup"
)

// Dependencies are shared by every processor of a coordinator.
type Dependencies struct {
	Engine      config.EngineConfig
	DB          *sql.DB
	Client      thor.Client
	Headers     processor.Headers
	Maintenance db.Maintenance
}

// IndexerCoordinator runs one processor per indexer, plus the chain watcher when one is set.
// Processors are independent: each has its own head and never waits for another.
type IndexerCoordinator struct {
	mu sync.RWMutex

	// processors in registration order
	processors []*processor.Processor
	byName     map[string]*processor.Processor

	watcher *watcher.Watcher
	log     *logger.Logger
}

// NewIndexerCoordinator creates a new IndexerCoordinator.
func NewIndexerCoordinator(log *logger.Logger) *IndexerCoordinator {
	return &IndexerCoordinator{
		byName: make(map[string]*processor.Processor),
		log:    log.WithComponent(internalcommon.ComponentCoordinator),
	}
}

// AddIndexers creates the configured indexers through the registry, migrates their tables
// and registers a processor for each.
func (ic *IndexerCoordinator) AddIndexers(cfgs []config.IndexerConfig, deps Dependencies, log *logger.Logger) error {
	if deps.DB == nil || deps.Client == nil {
		return errors.New("database and thor client are required")
	}

	st := store.New(deps.DB, log)

	for i, cfg := range cfgs {
		if cfg.Type == "" {
			return fmt.Errorf("indexer #%d (%s) is missing 'type' field in configuration", i+1, cfg.Name)
		}

		idx, err := indexer.Create(cfg, indexer.Env{DB: deps.DB, Client: deps.Client}, log)
		if err != nil {
			return fmt.Errorf("failed to create indexer %s: %w", cfg.Name, err)
		}

		if m, ok := idx.(indexer.Migrator); ok {
			if err := db.RunMigrationsDB(log, deps.DB, m.Migrations()); err != nil {
				return fmt.Errorf("failed to migrate indexer %s: %w", cfg.Name, err)
			}
		}

		p, err := processor.New(idx, processor.NewOptions(deps.Engine, cfg), deps.Client, deps.Headers, st,
			deps.Maintenance, log)
		if err != nil {
			return fmt.Errorf("failed to create processor of %s: %w", cfg.Name, err)
		}

		if err := ic.RegisterProcessor(p); err != nil {
			return err
		}

		ic.log.Infow("indexer registered", "name", cfg.Name, "type", cfg.Type)
	}

	return nil
}

// RegisterProcessor registers a processor. Names key heads and snapshots, so they must be unique.
func (ic *IndexerCoordinator) RegisterProcessor(p *processor.Processor) error {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if _, exists := ic.byName[p.Name()]; exists {
		return fmt.Errorf("duplicate indexer name %q", p.Name())
	}

	ic.byName[p.Name()] = p
	ic.processors = append(ic.processors, p)

	return nil
}

// SetWatcher sets the watcher run alongside the processors.
func (ic *IndexerCoordinator) SetWatcher(w *watcher.Watcher) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.watcher = w
}

// Watcher returns the watcher, nil when none is set.
func (ic *IndexerCoordinator) Watcher() *watcher.Watcher {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.watcher
}

// Processors returns the registered processors in registration order.
func (ic *IndexerCoordinator) Processors() []*processor.Processor {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	processors := make([]*processor.Processor, len(ic.processors))
	copy(processors, ic.processors)
	return processors
}

// Processor returns the processor of the named indexer.
func (ic *IndexerCoordinator) Processor(name string) (*processor.Processor, bool) {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	p, ok := ic.byName[name]
	return p, ok
}

// Statuses returns the status of every processor.
func (ic *IndexerCoordinator) Statuses() []processor.Status {
	processors := ic.Processors()

	statuses := make([]processor.Status, 0, len(processors))
	for _, p := range processors {
		statuses = append(statuses, p.Status())
	}
	return statuses
}

// Run runs every processor and the watcher until ctx is cancelled.
// The first fatal processor error stops all of them and is returned.
func (ic *IndexerCoordinator) Run(ctx context.Context) error {
	processors := ic.Processors()
	w := ic.Watcher()

	if len(processors) == 0 {
		return errors.New("no indexers registered")
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, p := range processors {
		g.Go(func() error {
			if err := p.Run(gctx); err != nil {
				return fmt.Errorf("indexer %s: %w", p.Name(), err)
			}
			return nil
		})
	}

	if w != nil {
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	ic.log.Infow("coordinator started", "indexers", len(processors), "watcher", w != nil)

	err := g.Wait()
	if err != nil {
		ic.log.Errorw("coordinator stopped", "error", err)
	} else {
		ic.log.Info("coordinator stopped")
	}

	return err
}

// Close releases the resources held by the indexers.
func (ic *IndexerCoordinator) Close() error {
	var errs []error
	for _, p := range ic.Processors() {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("indexer %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
