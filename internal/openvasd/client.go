// Package openvasd implements a client for the HTTP JSON API of the
// scanner daemon. It covers health probes, the VT feed and the scan life
// cycle: create, start, poll status, fetch results, stop and delete.
package openvasd

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anstrom/gvmclient/internal/config"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
	"github.com/anstrom/gvmclient/internal/logging"
	"github.com/anstrom/gvmclient/internal/metrics"
)

const (
	apiKeyHeader    = "X-API-KEY"
	requestIDHeader = "X-Request-ID"
	userAgent       = "gvmclient/1.0"

	// Error bodies are only used for messages.
	maxErrorBody = 4 * 1024
)

// APIError reports a non-2xx reply.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("[%s] %s %s: status %d (request %s): %s",
			gvmerrors.CodeHTTP, e.Method, e.Path, e.StatusCode, e.RequestID, msg)
	}
	return fmt.Sprintf("[%s] %s %s: status %d: %s", gvmerrors.CodeHTTP, e.Method, e.Path, e.StatusCode, msg)
}

// ErrorCode returns CodeHTTP.
func (e *APIError) ErrorCode() gvmerrors.ErrorCode {
	return gvmerrors.CodeHTTP
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAPIKey sets the key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Client) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

// Client talks to one scanner daemon. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    metrics.Recorder
}

// New creates a client for the daemon at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, gvmerrors.ErrConfigInvalid("openvasd.url", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger:  logging.Default(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("openvasd").WithAddress(u.Host)
	return c, nil
}

// NewFromConfig creates a client from the openvasd configuration section.
func NewFromConfig(cfg config.OpenvasdConfig, opts ...Option) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 30 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed daemons
			},
		},
	}
	base := []Option{WithHTTPClient(hc), WithAPIKey(cfg.APIKey)}
	return New(cfg.URL, append(base, opts...)...)
}

// do performs one request. A non-nil in is sent as JSON; a non-nil out
// receives the decoded reply.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) (*http.Response, error) {
	u := *c.baseURL
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, gvmerrors.Wrap(gvmerrors.CodeValidation, "failed to encode request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, gvmerrors.Wrap(gvmerrors.CodeHTTP, "failed to create request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.metrics.ObserveHTTPRequest(method, 0, duration)
		c.logger.Error("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, c.transportError(ctx, method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.metrics.ObserveHTTPRequest(method, resp.StatusCode, duration)
	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    strings.TrimSpace(string(msg)),
			RequestID:  requestID,
		}
	}

	if out != nil && method != http.MethodHead {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, gvmerrors.Wrap(gvmerrors.CodeParse, "failed to decode "+method+" "+path+" reply", err)
		}
	}
	return resp, nil
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	code := gvmerrors.CodeConnectFailed
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		code = gvmerrors.CodeCanceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		code = gvmerrors.CodeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		code = gvmerrors.CodeTimeout
	}
	return gvmerrors.NewTransportError(code, op, c.baseURL.Host, err)
}

// Health probes /health/alive, /health/ready or /health/started and
// returns the feed version header when the daemon reports one.
func (c *Client) Health(ctx context.Context, probe HealthProbe) (string, error) {
	resp, err := c.do(ctx, http.MethodHead, "/health/"+string(probe), nil, nil, nil)
	if err != nil {
		return "", err
	}
	return resp.Header.Get("feed-version"), nil
}

// GetVTOIDs lists the OIDs of all loaded VTs.
func (c *Client) GetVTOIDs(ctx context.Context) ([]string, error) {
	var oids []string
	if _, err := c.do(ctx, http.MethodGet, "/vts", nil, nil, &oids); err != nil {
		return nil, err
	}
	return oids, nil
}

// GetVTs lists all loaded VTs with their metadata.
func (c *Client) GetVTs(ctx context.Context) ([]VT, error) {
	var vts []VT
	q := url.Values{"information": {"1"}}
	if _, err := c.do(ctx, http.MethodGet, "/vts", q, nil, &vts); err != nil {
		return nil, err
	}
	return vts, nil
}

// CreateScan registers a scan and returns its id. The scan does not run
// until StartScan.
func (c *Client) CreateScan(ctx context.Context, scan Scan) (string, error) {
	if len(scan.Target.Hosts) == 0 {
		return "", gvmerrors.NewRequiredArgument("CreateScan", "target.hosts")
	}
	var id string
	if _, err := c.do(ctx, http.MethodPost, "/scans", nil, scan, &id); err != nil {
		return "", err
	}
	return id, nil
}

// ListScans returns the ids of all known scans.
func (c *Client) ListScans(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := c.do(ctx, http.MethodGet, "/scans", nil, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetScan returns the definition of a scan.
func (c *Client) GetScan(ctx context.Context, id string) (*Scan, error) {
	if id == "" {
		return nil, gvmerrors.NewRequiredArgument("GetScan", "scan_id")
	}
	var scan Scan
	if _, err := c.do(ctx, http.MethodGet, scanPath(id), nil, nil, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// StartScan starts a created scan.
func (c *Client) StartScan(ctx context.Context, id string) error {
	return c.scanAction(ctx, "StartScan", id, ActionStart)
}

// StopScan stops a running scan.
func (c *Client) StopScan(ctx context.Context, id string) error {
	return c.scanAction(ctx, "StopScan", id, ActionStop)
}

func (c *Client) scanAction(ctx context.Context, function, id string, action Action) error {
	if id == "" {
		return gvmerrors.NewRequiredArgument(function, "scan_id")
	}
	_, err := c.do(ctx, http.MethodPost, scanPath(id), nil, actionRequest{Action: action}, nil)
	return err
}

// GetScanStatus returns the progress of a scan.
func (c *Client) GetScanStatus(ctx context.Context, id string) (*ScanStatus, error) {
	if id == "" {
		return nil, gvmerrors.NewRequiredArgument("GetScanStatus", "scan_id")
	}
	var status ScanStatus
	if _, err := c.do(ctx, http.MethodGet, scanPath(id)+"/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetScanResults returns results of a scan. A nil rng requests all of
// them; otherwise results rng.First through rng.Last, with Last < 0
// meaning open ended.
func (c *Client) GetScanResults(ctx context.Context, id string, rng *ResultRange) ([]Result, error) {
	if id == "" {
		return nil, gvmerrors.NewRequiredArgument("GetScanResults", "scan_id")
	}
	var q url.Values
	if rng != nil {
		if rng.First < 0 || (rng.Last >= 0 && rng.Last < rng.First) {
			return nil, gvmerrors.NewInvalidArgument("GetScanResults", "range", *rng)
		}
		q = url.Values{"range": {rng.String()}}
	}
	var results []Result
	if _, err := c.do(ctx, http.MethodGet, scanPath(id)+"/results", q, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteScan removes a scan and its results.
func (c *Client) DeleteScan(ctx context.Context, id string) error {
	if id == "" {
		return gvmerrors.NewRequiredArgument("DeleteScan", "scan_id")
	}
	_, err := c.do(ctx, http.MethodDelete, scanPath(id), nil, nil, nil)
	return err
}

func scanPath(id string) string {
	return "/scans/" + url.PathEscape(id)
}

// String renders the range as the daemon expects it: "first-last" or
// "first".
func (r ResultRange) String() string {
	if r.Last < 0 {
		return strconv.Itoa(r.First)
	}
	return strconv.Itoa(r.First) + "-" + strconv.Itoa(r.Last)
}
