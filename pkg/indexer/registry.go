package indexer

import (
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// Env holds the shared resources handed to indexer factories.
type Env struct {
	DB     *sql.DB
	Client thor.Client
}

// Factory builds an indexer from its configuration entry.
type Factory func(cfg config.IndexerConfig, env Env, log *logger.Logger) (Indexer, error)

var factories = struct {
	sync.RWMutex
	byType map[string]Factory
}{byType: make(map[string]Factory)}

// Register makes an indexer type available to configuration files. Type names are
// case-insensitive. Like database/sql drivers, indexer packages call it from init and
// registering the same type twice panics.
func Register(indexerType string, factory Factory) {
	name := strings.ToLower(strings.TrimSpace(indexerType))
	if name == "" || factory == nil {
		panic("indexer: Register needs a type name and a factory")
	}

	factories.Lock()
	defer factories.Unlock()

	if _, dup := factories.byType[name]; dup {
		panic("indexer: Register called twice for type " + name)
	}
	factories.byType[name] = factory
}

// GetFactory returns the factory of the given type, nil when the type is unknown.
func GetFactory(indexerType string) Factory {
	factories.RLock()
	defer factories.RUnlock()

	return factories.byType[strings.ToLower(strings.TrimSpace(indexerType))]
}

// ListRegistered returns the registered type names in sorted order.
func ListRegistered() []string {
	factories.RLock()
	defer factories.RUnlock()

	return slices.Sorted(maps.Keys(factories.byType))
}

// Create builds the indexer of cfg.Type.
func Create(cfg config.IndexerConfig, env Env, log *logger.Logger) (Indexer, error) {
	factory := GetFactory(cfg.Type)
	if factory == nil {
		return nil, fmt.Errorf("unknown indexer type %q (registered: %s)",
			cfg.Type, strings.Join(ListRegistered(), ", "))
	}

	idx, err := factory(cfg, env, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer %s of type %s: %w", cfg.Name, cfg.Type, err)
	}

	return idx, nil
}
