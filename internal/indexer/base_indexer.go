package indexer

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/internal/db"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
	"github.com/russross/meddler"
)

var nonIdentifier = regexp.MustCompile(`[^a-z0-9_]+`)

// TableMetadata describes an indexer table for generic queries.
type TableMetadata struct {
	// Table is the prefixed table name.
	Table string
	// AddressColumns are matched against QueryParams.Address.
	AddressColumns []string
	// OrderColumns break ties after block_number, in order.
	OrderColumns []string
}

// BaseIndexer provides the plumbing shared by the indexers: configuration,
// table prefixes and generic queries on tables keyed by block.
// Embed it in an indexer struct.
type BaseIndexer struct {
	log    *logger.Logger
	cfg    config.IndexerConfig
	prefix string

	DB *sql.DB
}

func NewBaseIndexer(db *sql.DB, log *logger.Logger, cfg config.IndexerConfig) *BaseIndexer {
	return &BaseIndexer{
		DB:     db,
		log:    log,
		cfg:    cfg,
		prefix: TablePrefix(cfg.Name),
	}
}

// TablePrefix turns an indexer name into a prefix usable in table names.
func TablePrefix(name string) string {
	return strings.Trim(nonIdentifier.ReplaceAllString(strings.ToLower(name), "_"), "_") + "_"
}

// Name returns the configured name of the indexer instance.
func (b *BaseIndexer) Name() string {
	return b.cfg.Name
}

// GetType returns the type identifier of the indexer.
func (b *BaseIndexer) GetType() string {
	return b.cfg.Type
}

// Config returns the configuration of the indexer.
func (b *BaseIndexer) Config() config.IndexerConfig {
	return b.cfg
}

// Logger returns the indexer logger.
func (b *BaseIndexer) Logger() *logger.Logger {
	return b.log
}

// Table returns the name of one of the indexer tables.
func (b *BaseIndexer) Table(name string) string {
	return b.prefix + name
}

// PrefixMigrations binds migrations to the table prefix of the indexer.
func (b *BaseIndexer) PrefixMigrations(migrations []db.Migration) []db.Migration {
	prefixed := make([]db.Migration, 0, len(migrations))
	for _, m := range migrations {
		m.Prefix = b.prefix
		prefixed = append(prefixed, m)
	}
	return prefixed
}

// Addresses parses the configured contracts, nil when none is configured.
func (b *BaseIndexer) Addresses() ([]common.Address, error) {
	if len(b.cfg.Contracts) == 0 {
		return nil, nil
	}

	addrs := make([]common.Address, 0, len(b.cfg.Contracts))
	for _, c := range b.cfg.Contracts {
		if !common.IsHexAddress(c) {
			return nil, fmt.Errorf("indexer %s: invalid contract address %q", b.cfg.Name, c)
		}
		addrs = append(addrs, common.HexToAddress(c))
	}

	return addrs, nil
}

// Query retrieves the rows of a table matching qp into dst, a pointer to a slice of
// meddler structs, and returns the number of matching rows before pagination.
func (b *BaseIndexer) Query(ctx context.Context, meta TableMetadata, qp *indexer.QueryParams, dst any) (int, error) {
	if qp == nil {
		qp = indexer.NewDefaultQueryParams()
	}

	//nolint:gosec // Table name comes from trusted metadata, not user input
	query := "SELECT * FROM " + meta.Table
	args := []any{}
	var conditions []string

	if qp.FromBlock != nil {
		conditions = append(conditions, "block_number >= ?")
		args = append(args, *qp.FromBlock)
	}
	if qp.ToBlock != nil {
		conditions = append(conditions, "block_number <= ?")
		args = append(args, *qp.ToBlock)
	}
	if qp.Address != "" && len(meta.AddressColumns) > 0 {
		addrConditions := make([]string, len(meta.AddressColumns))
		for i, col := range meta.AddressColumns {
			addrConditions[i] = col + " = ?"
			args = append(args, common.HexToAddress(qp.Address).Hex())
		}
		conditions = append(conditions, "("+strings.Join(addrConditions, " OR ")+")")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := strings.Replace(query, "SELECT *", "SELECT COUNT(*)", 1)
	var total int
	if err := b.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total count: %w", err)
	}

	sortOrder := "DESC"
	if strings.EqualFold(qp.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	order := []string{"block_number " + sortOrder}
	for _, col := range meta.OrderColumns {
		order = append(order, col+" "+sortOrder)
	}

	limit := qp.Limit
	if limit <= 0 {
		limit = indexer.DefaultPageLimit
	}
	limit = min(limit, indexer.MaxPageLimit)

	query += " ORDER BY " + strings.Join(order, ", ") + " LIMIT ? OFFSET ?"
	args = append(args, limit, max(qp.Offset, 0))

	if err := meddler.QueryAll(b.DB, dst, query, args...); err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", meta.Table, err)
	}

	return total, nil
}

// Stats returns row counts and the block range covered by the given tables.
func (b *BaseIndexer) Stats(ctx context.Context, tables ...string) (*indexer.StatsResponse, error) {
	stats := &indexer.StatsResponse{}

	for _, table := range tables {
		var (
			count            int64
			earliest, latest uint32
		)

		//nolint:gosec // Table name comes from trusted metadata, not user input
		err := b.DB.QueryRowContext(ctx,
			"SELECT COUNT(*), COALESCE(MIN(block_number), 0), COALESCE(MAX(block_number), 0) FROM "+table).
			Scan(&count, &earliest, &latest)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s stats: %w", table, err)
		}

		if count == 0 {
			continue
		}

		stats.TotalRows += count
		if stats.EarliestBlock == 0 || earliest < stats.EarliestBlock {
			stats.EarliestBlock = earliest
		}
		stats.LatestBlock = max(stats.LatestBlock, latest)
	}

	return stats, nil
}

// DeleteBlock removes the rows a block inserted in table.
func (b *BaseIndexer) DeleteBlock(ctx context.Context, tx *sql.Tx, table string, blockID common.Hash) (int64, error) {
	//nolint:gosec // Table name comes from trusted metadata, not user input
	result, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE block_id = ?", blockID.Hex())
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	return result.RowsAffected()
}

// Close is a no-op, the database is owned by the coordinator.
func (b *BaseIndexer) Close() error {
	return nil
}
