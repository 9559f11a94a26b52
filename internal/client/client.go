// Package client calls the conversion API on behalf of the upload front end.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/JonMunkholm/csv2json/internal/core"
)

// ConvertPath is the API route the client posts to.
const ConvertPath = "/api/csv2json"

// maxErrorBody bounds how much of a failed response is read for its detail.
const maxErrorBody = 64 * 1024

// Config holds options for the API client and its transport.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:5000
	BaseURL string

	// Timeout bounds each Convert call from dial to the last body byte
	Timeout time.Duration

	// DialTimeout is the maximum amount of time a dial will wait for a connect to complete
	DialTimeout time.Duration

	// MaxIdleConnsPerHost controls the idle keep-alive connections kept to the API
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle keep-alive connection stays open
	IdleConnTimeout time.Duration
}

// DefaultConfig returns a Config for an API on localhost:5000.
func DefaultConfig() Config {
	return Config{
		BaseURL:             "http://localhost:5000",
		Timeout:             30 * time.Second,
		DialTimeout:         5 * time.Second,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
}

// NewHTTPClient creates the http.Client used by Client.
func NewHTTPClient(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}

// Client posts conversion requests to the API. It never retries.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a Client for cfg.BaseURL. Zero-valued fields of cfg take their
// DefaultConfig values.
func New(cfg Config) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = def.IdleConnTimeout
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must be http or https", cfg.BaseURL)
	}

	return &Client{
		endpoint: strings.TrimRight(base.String(), "/") + ConvertPath,
		http:     NewHTTPClient(cfg),
	}, nil
}

// Result is a successful API response. JSONData is kept raw so that the
// column order chosen by the API survives until it is rendered.
type Result struct {
	JSONData    json.RawMessage `json:"json_data"`
	RowCount    int             `json:"row_count"`
	ColumnCount int             `json:"column_count"`
}

// Convert sends req to the API. Every failure is a *core.UpstreamError:
// Timeout is set when the deadline passed, Status when the API answered
// with a non-2xx code.
func (c *Client) Convert(ctx context.Context, req core.ConversionRequest) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", core.ErrInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", core.ErrInternal, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(middleware.RequestIDHeader, requestID(ctx))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &core.UpstreamError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &core.UpstreamError{Status: resp.StatusCode, Detail: errorDetail(resp.StatusCode, raw)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.UpstreamError{Timeout: isTimeout(err), Err: fmt.Errorf("read response: %w", err)}
	}
	if !gjson.ValidBytes(raw) || !gjson.GetBytes(raw, "json_data").IsArray() {
		return nil, &core.UpstreamError{Status: resp.StatusCode, Detail: "malformed response body"}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &core.UpstreamError{Status: resp.StatusCode, Detail: "malformed response body", Err: err}
	}
	return &result, nil
}

// requestID returns the chi request ID of ctx so that API logs correlate
// with the front end's, or a fresh one for calls made outside a request.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// errorDetail extracts "detail" from an API error body. A structured detail
// is returned as raw JSON; a body without one falls back to its text, then
// to the status text.
func errorDetail(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		d := gjson.GetBytes(body, "detail")
		switch {
		case d.Type == gjson.String:
			return d.String()
		case d.Exists():
			return d.Raw
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "<") {
		return http.StatusText(status)
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
