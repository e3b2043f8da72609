package api

import (
	"time"

	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
)

// LogsResponse is a page of ordered logs.
type LogsResponse struct {
	Logs       []*indexer.LogEntry `json:"logs"`
	Pagination PaginationResult    `json:"pagination"`
}

// PaginationResult echoes the window of a page. Total counts every match of the query.
type PaginationResult struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse is degraded while any indexer is unhealthy.
type HealthResponse struct {
	Status    string          `json:"status" example:"ok" enums:"ok,degraded"`
	Timestamp time.Time       `json:"timestamp"`
	BestBlock *BlockRef       `json:"best_block,omitempty"`
	Indexers  []IndexerStatus `json:"indexers"`
}

// BlockRef is the trunk head last seen by the watcher.
type BlockRef struct {
	Number    uint32 `json:"number" example:"19500000"`
	ID        string `json:"id"`
	Timestamp uint64 `json:"timestamp"`
}

// IndexerStatus is the committed head and progress of one indexer.
type IndexerStatus struct {
	Name        string                 `json:"name"`
	Type        string                 `json:"type"`
	HeadNumber  uint32                 `json:"head_number"`
	HeadID      string                 `json:"head_id"`
	Mode        string                 `json:"mode" example:"steady" enums:"genesis,fast_forward,steady"`
	LastError   string                 `json:"last_error,omitempty"`
	LastUpdated time.Time              `json:"last_updated"`
	Healthy     bool                   `json:"healthy"`
	Stats       *indexer.StatsResponse `json:"stats,omitempty"`
}

// IndexerInfo lists the routes an indexer serves.
type IndexerInfo struct {
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	Endpoints []string `json:"endpoints"`
}
