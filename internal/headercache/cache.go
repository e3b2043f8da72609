package headercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// Cache keeps block headers by id in leveldb in front of the Thor client.
// A block id commits to the header content, so entries never go stale.
// Trunk status is not immutable and is never served from the cache:
// headers read back from leveldb always have IsTrunk and IsFinalized unset.
type Cache struct {
	db     *leveldb.DB
	client thor.Client
	log    *logger.Logger
}

// Open opens the cache described by cfg. A nil config or an empty path keeps the cache in memory.
func Open(cfg *config.HeaderCacheConfig, client thor.Client, log *logger.Logger) (*Cache, error) {
	var (
		db  *leveldb.DB
		err error
	)

	if cfg == nil || cfg.Path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(cfg.Path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open header cache: %w", err)
	}

	return &Cache{
		db:     db,
		client: client,
		log:    log.WithComponent(internalcommon.ComponentHeaderCache),
	}, nil
}

// Get returns the header of the block with the given id, asking the node on a miss.
// Returns nil, nil when neither the cache nor the node know the block.
func (c *Cache) Get(ctx context.Context, id common.Hash) (*thor.BlockHeader, error) {
	data, err := c.db.Get(id.Bytes(), nil)
	switch {
	case err == nil:
		var header thor.BlockHeader
		if err := json.Unmarshal(data, &header); err != nil {
			return nil, fmt.Errorf("corrupted header cache entry %s: %w", id.Hex(), err)
		}
		cacheHits.Inc()
		return &header, nil
	case !errors.Is(err, leveldb.ErrNotFound):
		return nil, fmt.Errorf("failed to read header cache: %w", err)
	}

	cacheMisses.Inc()

	header, err := c.client.GetBlock(ctx, thor.RevisionID(id))
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil
	}

	if err := c.Put(header); err != nil {
		c.log.Warnf("failed to cache header %s: %v", id.Hex(), err)
	}

	return header, nil
}

// Put stores the immutable part of a header.
func (c *Cache) Put(header *thor.BlockHeader) error {
	stored := *header
	stored.IsTrunk = false
	stored.IsFinalized = false

	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}

	return c.db.Put(stored.ID.Bytes(), data, nil)
}

// Close closes the underlying leveldb.
func (c *Cache) Close() error {
	return c.db.Close()
}
