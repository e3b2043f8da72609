package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/config"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/headercache"
	internalindexer "github.com/goran-ethernal/ThorIndexor/internal/indexer"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/metrics"
	"github.com/goran-ethernal/ThorIndexor/internal/migrations"
	"github.com/goran-ethernal/ThorIndexor/internal/thor"
	"github.com/goran-ethernal/ThorIndexor/internal/watcher"
	"github.com/goran-ethernal/ThorIndexor/pkg/api"
	pkgconfig "github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/spf13/cobra"
)

const stopTimeout = 10 * time.Second

func runIndexer(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := logger.NewComponentLoggerFromConfig(common.ComponentCoordinator, cfg.Logging)

	if len(cfg.Indexers) == 0 {
		log.Warn("no indexers configured, exiting")
		return nil
	}

	client, err := thor.NewClient(cfg.Thor, logger.NewComponentLoggerFromConfig(common.ComponentThorClient, cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to create thor client: %w", err)
	}
	log.Infow("using thor node", "url", cfg.Thor.URL)

	metricsServer := metrics.NewServer(cfg.Metrics, log)
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			stopCtx, stop := context.WithTimeout(context.Background(), stopTimeout)
			defer stop()
			if err := metricsServer.Stop(stopCtx); err != nil {
				log.Warnw("failed to stop metrics server", "error", err)
			}
		}()
	}

	database, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	log.Info("running engine migrations")
	if err := db.RunMigrationsDB(log, database, migrations.Engine()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	maintenance := db.NewMaintenanceCoordinator(cfg.DB.Path, database, cfg.Maintenance,
		logger.NewComponentLoggerFromConfig(common.ComponentMaintenance, cfg.Logging))
	if err := maintenance.Start(ctx); err != nil {
		return fmt.Errorf("failed to start database maintenance: %w", err)
	}
	defer func() {
		if err := maintenance.Stop(); err != nil {
			log.Warnw("failed to stop database maintenance", "error", err)
		}
	}()

	headers, err := headercache.Open(cfg.Thor.HeaderCache, client,
		logger.NewComponentLoggerFromConfig(common.ComponentHeaderCache, cfg.Logging))
	if err != nil {
		return err
	}
	defer headers.Close()

	coordinator := internalindexer.NewIndexerCoordinator(log)
	deps := internalindexer.Dependencies{
		Engine:      cfg.Engine,
		DB:          database,
		Client:      client,
		Headers:     headers,
		Maintenance: maintenance,
	}

	log.Infow("registering indexers", "count", len(cfg.Indexers))
	if err := coordinator.AddIndexers(cfg.Indexers, deps,
		logger.NewComponentLoggerFromConfig(common.ComponentProcessor, cfg.Logging)); err != nil {
		return err
	}
	defer func() {
		if err := coordinator.Close(); err != nil {
			log.Warnw("failed to close indexers", "error", err)
		}
	}()

	if cfg.Watcher != nil && cfg.Watcher.Enabled {
		w, closeNotifiers, err := newWatcher(ctx, cfg, client, headers)
		if err != nil {
			return err
		}
		defer closeNotifiers()
		coordinator.SetWatcher(w)
	}

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, coordinator,
			logger.NewComponentLoggerFromConfig(common.ComponentAPI, cfg.Logging))
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				log.Errorw("API server stopped", "error", err)
			}
		}()
	}

	log.Info("starting ThorIndexor")

	if err := coordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("indexing stopped: %w", err)
	}

	log.Info("ThorIndexor stopped")
	return nil
}

// newWatcher builds the chain watcher with its log, metrics and optional Redis notifiers.
func newWatcher(
	ctx context.Context,
	cfg *pkgconfig.Config,
	client *thor.Client,
	headers *headercache.Cache,
) (*watcher.Watcher, func(), error) {
	log := logger.NewComponentLoggerFromConfig(common.ComponentWatcher, cfg.Logging)

	notifiers := []watcher.Notifier{watcher.NewLogNotifier(log), watcher.MetricsNotifier{}}
	closeNotifiers := func() {}

	if cfg.Watcher.Redis != nil {
		rn, err := watcher.NewRedisNotifier(ctx, cfg.Watcher.Redis)
		if err != nil {
			return nil, nil, err
		}
		notifiers = append(notifiers, rn)
		closeNotifiers = func() {
			if err := rn.Close(); err != nil {
				log.Warnw("failed to close redis notifier", "error", err)
			}
		}
	}

	w, err := watcher.New(client, headers.Get, watcher.Options{
		Window:           cfg.Engine.ReversibleWindow,
		SamplingInterval: cfg.Engine.SamplingInterval.Duration,
	}, log, notifiers...)
	if err != nil {
		closeNotifiers()
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return w, closeNotifiers, nil
}
