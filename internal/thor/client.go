package thor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	internalcommon "github.com/goran-ethernal/ThorIndexor/internal/common"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	pkgthor "github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// Compile-time check to ensure Client implements pkgthor.Client interface.
var _ pkgthor.Client = (*Client)(nil)

const (
	opGetBlock         = "get_block"
	opGetExpandedBlock = "get_expanded_block"
	opTraceClause      = "trace_clause"
	opFilterEventLogs  = "filter_event_logs"
	opGetAccount       = "get_account"
	opGetCode          = "get_code"
	opExplain          = "explain"
)

// Client is the Thor REST API client. Every request is bounded by the configured
// timeout and retried with exponential backoff on transient failures.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	retry   *config.RetryConfig
	log     *logger.Logger
}

// NewClient creates a new Thor client for the given configuration.
func NewClient(cfg config.ThorConfig, log *logger.Logger) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid thor url %q: %w", cfg.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid thor url %q: scheme must be http or https", cfg.URL)
	}

	timeout := cfg.RequestTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		retry:   cfg.Retry,
		log:     log.WithComponent(internalcommon.ComponentThorClient),
	}, nil
}

// GetBlock retrieves the header of the block at the given revision.
func (c *Client) GetBlock(ctx context.Context, rev pkgthor.Revision) (*pkgthor.BlockHeader, error) {
	var header *pkgthor.BlockHeader

	if err := c.do(ctx, opGetBlock, http.MethodGet, "/blocks/"+url.PathEscape(string(rev)), nil, &header); err != nil {
		return nil, err
	}

	if header == nil {
		return nil, nil
	}

	if err := validateHeader(header); err != nil {
		return nil, err
	}

	return header, nil
}

// GetExpandedBlock retrieves a block with transactions and receipts.
func (c *Client) GetExpandedBlock(ctx context.Context, rev pkgthor.Revision) (*pkgthor.ExpandedBlock, error) {
	var block *pkgthor.ExpandedBlock

	path := "/blocks/" + url.PathEscape(string(rev)) + "?expanded=true"
	if err := c.do(ctx, opGetExpandedBlock, http.MethodGet, path, nil, &block); err != nil {
		return nil, err
	}

	if block == nil {
		return nil, nil
	}

	if err := validateHeader(&block.BlockHeader); err != nil {
		return nil, err
	}

	return block, nil
}

type tracerRequest struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// TraceClause runs the call tracer on a single clause of a transaction.
func (c *Client) TraceClause(ctx context.Context, blockID common.Hash, txIndex, clauseIndex int,
) (*pkgthor.CallTrace, error) {
	req := tracerRequest{
		Name:   "call",
		Target: fmt.Sprintf("%s/%d/%d", blockID.Hex(), txIndex, clauseIndex),
	}

	var trace *pkgthor.CallTrace
	if err := c.do(ctx, opTraceClause, http.MethodPost, "/debug/tracers", req, &trace); err != nil {
		return nil, err
	}

	if trace == nil {
		return nil, fmt.Errorf("%w: empty trace for %s", ErrInvalidResponse, req.Target)
	}

	return trace, nil
}

// FilterEventLogs retrieves the logs matching the filter.
func (c *Client) FilterEventLogs(ctx context.Context, filter *pkgthor.EventFilter) ([]*pkgthor.EventLog, error) {
	var logs []*pkgthor.EventLog

	if err := c.do(ctx, opFilterEventLogs, http.MethodPost, "/logs/event", filter, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

// GetAccount retrieves balance and energy of an account.
func (c *Client) GetAccount(ctx context.Context, addr common.Address, rev pkgthor.Revision,
) (*pkgthor.Account, error) {
	var account *pkgthor.Account

	path := "/accounts/" + addr.Hex() + revisionQuery(rev)
	if err := c.do(ctx, opGetAccount, http.MethodGet, path, nil, &account); err != nil {
		return nil, err
	}

	if account == nil {
		return nil, fmt.Errorf("%w: empty account %s", ErrInvalidResponse, addr.Hex())
	}

	return account, nil
}

// GetCode retrieves the code deployed at an address.
func (c *Client) GetCode(ctx context.Context, addr common.Address, rev pkgthor.Revision) ([]byte, error) {
	var res struct {
		Code hexutil.Bytes `json:"code"`
	}

	path := "/accounts/" + addr.Hex() + "/code" + revisionQuery(rev)
	if err := c.do(ctx, opGetCode, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}

	return res.Code, nil
}

// Explain simulates clauses without sending a transaction.
func (c *Client) Explain(ctx context.Context, req *pkgthor.ExplainRequest, rev pkgthor.Revision,
) ([]*pkgthor.CallResult, error) {
	var results []*pkgthor.CallResult

	if err := c.do(ctx, opExplain, http.MethodPost, "/accounts/*"+revisionQuery(rev), req, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// do executes a request with retries and decodes the JSON response into out.
// A literal null response leaves out untouched.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
	}

	return withRetry(ctx, c.retry, operation, func() error {
		start := time.Now()
		RequestInc(operation)
		defer func() { RequestDuration(operation, time.Since(start)) }()

		raw, err := c.roundTrip(ctx, method, path, payload)
		if err != nil {
			RequestError(operation, errorType(err))
			c.log.Debugf("%s %s failed: %v", method, path, err)
			return err
		}

		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil
		}

		if err := json.Unmarshal(raw, out); err != nil {
			RequestError(operation, "decode")
			return fmt.Errorf("%w: %s %s: %w", ErrInvalidResponse, method, path, err)
		}

		return nil
	})
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(method, path, resp.StatusCode, bytes.TrimSpace(raw))
	}

	return raw, nil
}

func validateHeader(header *pkgthor.BlockHeader) error {
	if pkgthor.NumberOf(header.ID) != header.Number {
		return fmt.Errorf("%w: block %s reports number %d", ErrInvalidResponse, header.ID.Hex(), header.Number)
	}

	return nil
}

func revisionQuery(rev pkgthor.Revision) string {
	if rev == "" {
		return ""
	}

	return "?revision=" + url.QueryEscape(string(rev))
}

func errorType(err error) string {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return fmt.Sprintf("http_%d", httpErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport"
	}
}
