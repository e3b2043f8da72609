// Package store persists indexer heads and per-block snapshots.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/russross/meddler"
)

const headSuffix = "-head"

// Store reads and writes the engine tables: config (heads) and snapshot.
// Writers take the caller's transaction so that heads and snapshots
// always commit together with the data they guard.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// New creates a Store on a database the engine migrations were applied to.
func New(db *sql.DB, log *logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log.WithComponent(internalcommon.ComponentStore),
	}
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

type configEntry struct {
	Key   string `meddler:"key"`
	Value string `meddler:"value"`
}

// HeadKey returns the config key of an indexer head.
func HeadKey(indexer string) string {
	return indexer + headSuffix
}

// Head returns the head of an indexer, ok is false when the indexer never committed a block.
func (s *Store) Head(q meddler.DB, indexer string) (id common.Hash, ok bool, err error) {
	var entry configEntry
	err = meddler.QueryRow(q, &entry, `SELECT key, value FROM config WHERE key = ?`, HeadKey(indexer))
	if errors.Is(err, sql.ErrNoRows) {
		return common.Hash{}, false, nil
	}
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("failed to load head of %s: %w", indexer, err)
	}

	return common.HexToHash(entry.Value), true, nil
}

// SaveHead sets the head of an indexer.
func (s *Store) SaveHead(tx *sql.Tx, indexer string, id common.Hash) error {
	_, err := tx.Exec(`INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, HeadKey(indexer), id.Hex())
	if err != nil {
		return fmt.Errorf("failed to save head of %s: %w", indexer, err)
	}

	s.log.Debugf("head saved: indexer=%s, id=%s", indexer, id.Hex())

	return nil
}

// Heads returns the heads of every indexer that committed at least one block, keyed by indexer name.
func (s *Store) Heads() (map[string]common.Hash, error) {
	var entries []*configEntry
	if err := meddler.QueryAll(s.db, &entries, `SELECT key, value FROM config WHERE key LIKE '%-head'`); err != nil {
		return nil, fmt.Errorf("failed to list heads: %w", err)
	}

	heads := make(map[string]common.Hash, len(entries))
	for _, e := range entries {
		heads[strings.TrimSuffix(e.Key, headSuffix)] = common.HexToHash(e.Value)
	}

	return heads, nil
}
