package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/sellerpulse/sellerpulse-backend/pkg/config"
	pkgerrors "github.com/sellerpulse/sellerpulse-backend/pkg/errors"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
	"github.com/sellerpulse/sellerpulse-backend/pkg/metrics"
)

const responseBodyReadLimit int64 = 1024

// ErrNoData marks an upstream 403/404 on a per-item call. Enrichment callers
// treat it as "no data for this item" rather than a failure.
var ErrNoData = errors.New("marketplace: no data")

var errBaseURLRequired = errors.New("marketplace base url is required")

// StatusError carries the upstream status and endpoint of a failed call.
type StatusError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("marketplace %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}

func (e *StatusError) UpstreamStatus() int      { return e.Status }
func (e *StatusError) UpstreamEndpoint() string { return e.Endpoint }

// TraceEntry is one diagnostic record of an upstream call.
type TraceEntry struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Body   string `json:"body,omitempty"`
}

// Trace collects diagnostic records when debug output is requested. Safe for
// concurrent appends.
type Trace struct {
	mu      sync.Mutex
	entries []TraceEntry
}

// NewTrace returns an empty trace collection.
func NewTrace() *Trace {
	return &Trace{}
}

// Append records one upstream exchange.
func (t *Trace) Append(entry TraceEntry) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()
}

// Entries returns a copy of the collected records.
func (t *Trace) Entries() []TraceEntry {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Client performs authenticated GETs against the marketplace API with a
// bounded retry-and-backoff policy for rate limits and server errors.
type Client struct {
	httpClient *http.Client
	baseURL    string
	attempts   uint64
	baseDelay  time.Duration
	logg       *logger.Logger
	metrics    *metrics.UpstreamMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the marketplace client from config.
func NewClient(cfg config.MarketplaceConfig, logg *logger.Logger, m *metrics.UpstreamMetrics, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		attempts:   uint64(cfg.RetryAttempts),
		baseDelay:  baseDelay,
		logg:       logg,
		metrics:    m,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// get performs one authenticated GET with retries, decoding the body into out.
func (c *Client) get(ctx context.Context, token, label, path string, query url.Values, header http.Header, out any, trace *Trace) error {
	fullURL := c.buildURL(path, query)

	backoff := retry.WithMaxRetries(c.attempts, retry.NewExponential(c.baseDelay))
	attempt := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempt > 0 {
			c.metrics.IncRetry(label)
		}
		attempt++
		return c.once(ctx, token, label, fullURL, header, out, trace)
	})
	if err == nil {
		return nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && isRetryableStatus(statusErr.Status) {
		return pkgerrors.Wrap(pkgerrors.CodeUpstreamExhausted, statusErr,
			fmt.Sprintf("marketplace %s retries exhausted", label))
	}
	return err
}

func (c *Client) once(ctx context.Context, token, label, fullURL string, header http.Header, out any, trace *Trace) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s request", label))
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(label, "network_error", time.Since(start))
		return retry.RetryableError(pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", label)))
	}
	defer func() { _ = resp.Body.Close() }()

	c.metrics.ObserveRequest(label, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode == http.StatusOK {
		trace.Append(TraceEntry{URL: fullURL, Status: resp.StatusCode})
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", label))
		}
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	snippet := strings.TrimSpace(string(body))
	trace.Append(TraceEntry{URL: fullURL, Status: resp.StatusCode, Body: snippet})

	statusErr := &StatusError{Status: resp.StatusCode, Endpoint: label, Body: snippet}

	if isRetryableStatus(resp.StatusCode) {
		if c.logg != nil {
			lctx := c.logg.WithFields(ctx, map[string]any{"endpoint": label, "status": resp.StatusCode})
			c.logg.Warn(lctx, "marketplace request will be retried")
		}
		return retry.RetryableError(statusErr)
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s (%d)", ErrNoData, label, resp.StatusCode)
	}

	return pkgerrors.Wrap(codeForStatus(resp.StatusCode), statusErr,
		fmt.Sprintf("marketplace %s failed", label))
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
