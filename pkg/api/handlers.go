package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/processor"
	"github.com/goran-ethernal/ThorIndexor/internal/watcher"
	"github.com/goran-ethernal/ThorIndexor/pkg/indexer"
)

// Registry gives access to the running processors and the chain watcher.
type Registry interface {
	Processors() []*processor.Processor
	Processor(name string) (*processor.Processor, bool)
	Watcher() *watcher.Watcher
}

// Handler serves the read-only routes over the processors of a Registry.
type Handler struct {
	registry Registry
	log      *logger.Logger
}

func NewHandler(registry Registry, log *logger.Logger) *Handler {
	return &Handler{registry: registry, log: log}
}

// ListIndexers lists the running indexers and the routes each one serves.
// @Summary List indexers
// @Description Running indexers with the routes they serve
// @Tags Indexers
// @Produce json
// @Success 200 {array} IndexerInfo "List of indexers"
// @Router /indexers [get]
func (h *Handler) ListIndexers(w http.ResponseWriter, r *http.Request) {
	processors := h.registry.Processors()

	infos := make([]IndexerInfo, 0, len(processors))
	for _, p := range processors {
		idx := p.Indexer()
		base := "/api/v1/indexers/" + p.Name()

		endpoints := []string{base}
		if _, ok := idx.(indexer.LogReader); ok {
			endpoints = append(endpoints, base+"/logs")
		}
		if _, ok := idx.(indexer.AccountReader); ok {
			endpoints = append(endpoints, base+"/accounts/{address}")
		}

		infos = append(infos, IndexerInfo{
			Type:      indexerType(idx),
			Name:      p.Name(),
			Endpoints: endpoints,
		})
	}

	respondJSON(w, http.StatusOK, infos)
}

// GetIndexer reports the head, mode and row statistics of one indexer.
// @Summary Indexer status
// @Description Retrieve the head, processing mode and row statistics of an indexer
// @Tags Indexers
// @Produce json
// @Param name path string true "Indexer name"
// @Success 200 {object} IndexerStatus "Indexer status"
// @Failure 404 {object} ErrorResponse "Indexer not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /indexers/{name} [get]
func (h *Handler) GetIndexer(w http.ResponseWriter, r *http.Request) {
	p, ok := h.processor(w, r)
	if !ok {
		return
	}

	status := statusOf(p)

	if sr, ok := p.Indexer().(indexer.StatsReader); ok {
		stats, err := sr.Stats(r.Context())
		if err != nil {
			h.log.Errorw("failed to get stats", "indexer", p.Name(), "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get stats")
			return
		}
		status.Stats = stats
	}

	respondJSON(w, http.StatusOK, status)
}

// GetLogs pages through the events and VET transfers of an indexer in clause order.
// @Summary Ordered logs
// @Description Events and VET transfers in clause order, filtered by block range and address
// @Tags Logs
// @Produce json
// @Param name path string true "Indexer name"
// @Param limit query int false "Maximum number of logs to return" default(100)
// @Param offset query int false "Number of logs to skip" default(0)
// @Param from_block query string false "Filter logs from this block number (decimal or 0x hex)"
// @Param to_block query string false "Filter logs up to this block number (decimal or 0x hex)"
// @Param address query string false "Filter by emitter, sender or recipient"
// @Param sort_order query string false "Sort order: asc or desc" Enums(asc, desc)
// @Success 200 {object} LogsResponse "List of logs with pagination info"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Indexer not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /indexers/{name}/logs [get]
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	p, ok := h.processor(w, r)
	if !ok {
		return
	}

	reader, ok := p.Indexer().(indexer.LogReader)
	if !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("indexer '%s' does not serve logs", p.Name()))
		return
	}

	params, err := parseQueryParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	logs, total, err := reader.QueryLogs(r.Context(), params)
	if err != nil {
		h.log.Errorw("failed to query logs", "indexer", p.Name(), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to query logs")
		return
	}

	respondJSON(w, http.StatusOK, LogsResponse{
		Logs: logs,
		Pagination: PaginationResult{
			Total:   total,
			Limit:   params.Limit,
			Offset:  params.Offset,
			HasMore: params.Offset+len(logs) < total,
		},
	})
}

// GetAccount reads an account of a ledger indexer at its committed head.
// @Summary Account balance
// @Description Retrieve the VET and VTHO balance of an account at the indexer head
// @Tags Accounts
// @Produce json
// @Param name path string true "Indexer name"
// @Param address path string true "Account address"
// @Success 200 {object} indexer.AccountState "Account state"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Indexer or account not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /indexers/{name}/accounts/{address} [get]
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	p, ok := h.processor(w, r)
	if !ok {
		return
	}

	reader, ok := p.Indexer().(indexer.AccountReader)
	if !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("indexer '%s' does not serve accounts", p.Name()))
		return
	}

	address := r.PathValue("address")
	if !common.IsHexAddress(address) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid address '%s'", address))
		return
	}

	account, err := reader.Account(r.Context(), common.HexToAddress(address))
	switch {
	case errors.Is(err, indexer.ErrNotFound):
		respondError(w, http.StatusNotFound, fmt.Sprintf("account %s not found", address))
	case err != nil:
		h.log.Errorw("failed to get account", "indexer", p.Name(), "address", address, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get account")
	default:
		respondJSON(w, http.StatusOK, account)
	}
}

// Health is degraded while any indexer reports an error.
// @Summary Health
// @Description Trunk head seen by the watcher and the status of every indexer
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "API and indexer health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	processors := h.registry.Processors()

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Indexers:  make([]IndexerStatus, 0, len(processors)),
	}

	if wt := h.registry.Watcher(); wt != nil {
		if head := wt.Head(); head != nil {
			response.BestBlock = &BlockRef{Number: head.Number, ID: head.ID.Hex(), Timestamp: head.Timestamp}
		}
	}

	for _, p := range processors {
		status := statusOf(p)
		if !status.Healthy {
			response.Status = "degraded"
		}
		response.Indexers = append(response.Indexers, status)
	}

	respondJSON(w, http.StatusOK, response)
}

// processor resolves the {name} path value. It has already responded when it returns false.
func (h *Handler) processor(w http.ResponseWriter, r *http.Request) (*processor.Processor, bool) {
	name := r.PathValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "indexer name is required")
		return nil, false
	}

	p, ok := h.registry.Processor(name)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("indexer '%s' not found", name))
		return nil, false
	}

	return p, true
}

func statusOf(p *processor.Processor) IndexerStatus {
	s := p.Status()
	return IndexerStatus{
		Name:        p.Name(),
		Type:        indexerType(p.Indexer()),
		HeadNumber:  s.HeadNumber,
		HeadID:      s.HeadID,
		Mode:        s.Mode,
		LastError:   s.LastError,
		LastUpdated: s.LastUpdated,
		Healthy:     s.LastError == "",
	}
}

func indexerType(idx indexer.Indexer) string {
	if t, ok := idx.(interface{ GetType() string }); ok {
		return t.GetType()
	}
	return ""
}

// parseQueryParams validates the filters of the logs route. Absent parameters keep
// the defaults of indexer.NewDefaultQueryParams.
func parseQueryParams(r *http.Request) (*indexer.QueryParams, error) {
	params := indexer.NewDefaultQueryParams()
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > indexer.MaxPageLimit {
			return params, fmt.Errorf("invalid limit: must be between 1 and %d", indexer.MaxPageLimit)
		}
		params.Limit = n
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return params, errors.New("invalid offset: must be non-negative")
		}
		params.Offset = n
	}

	for _, bound := range []struct {
		key string
		dst **uint32
	}{{"from_block", &params.FromBlock}, {"to_block", &params.ToBlock}} {
		v := q.Get(bound.key)
		if v == "" {
			continue
		}
		n, err := internalcommon.ParseBlockNumber(v)
		if err != nil {
			return params, fmt.Errorf("invalid %s: %q", bound.key, v)
		}
		*bound.dst = &n
	}
	if params.FromBlock != nil && params.ToBlock != nil && *params.FromBlock > *params.ToBlock {
		return params, errors.New("from_block cannot be greater than to_block")
	}

	if v := q.Get("address"); v != "" {
		if !common.IsHexAddress(v) {
			return params, fmt.Errorf("invalid address: %q", v)
		}
		params.Address = v
	}

	switch order := strings.ToLower(q.Get("sort_order")); order {
	case "":
	case "asc", "desc":
		params.SortOrder = order
	default:
		return params, errors.New("invalid sort_order: must be 'asc' or 'desc'")
	}

	return params, nil
}

// respondJSON encodes data before writing the header, so an encoding failure still yields a 500.
func respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message, Code: status})
}
