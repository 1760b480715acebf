// Package dashapi provides a client for the outreach dashboard statistics API.
package dashapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/odash/internal/model"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
	userAgent      = "github.com/theirongolddev/odash/1.0"

	basicPath      = "/api/dashboard/basic"
	detailsPath    = "/api/dashboard/details"
	replyRatesPath = "/api/dashboard/reply-rates"
)

// ErrRequestFailed wraps every failure of a dashboard request: transport,
// non-2xx status, unreadable body or undecodable JSON alike.
var ErrRequestFailed = errors.New("dashapi: request failed")

// envelope is the shape shared by all dashboard endpoints.
type envelope[T any] struct {
	Data []T `json:"data"`
}

// Client calls the dashboard endpoints of one API host.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// NewClient creates a client for the API at baseURL.
// Returns nil if baseURL is empty or not an http(s) URL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchBasic returns workspace names with their campaigns.
func (c *Client) FetchBasic(ctx context.Context) ([]model.BasicWorkspaceStats, error) {
	return fetch[model.BasicWorkspaceStats](ctx, c, basicPath)
}

// FetchDetails returns per-workspace capacity, monthly and lifetime stats.
func (c *Client) FetchDetails(ctx context.Context) ([]model.DetailedWorkspaceStats, error) {
	return fetch[model.DetailedWorkspaceStats](ctx, c, detailsPath)
}

// FetchReplyRates returns reply rates per provider combination for each workspace.
func (c *Client) FetchReplyRates(ctx context.Context) ([]model.ProviderReplyRateEntry, error) {
	return fetch[model.ProviderReplyRateEntry](ctx, c, replyRatesPath)
}

// Endpoint returns the full URL the given lane is fetched from.
func (c *Client) Endpoint(lane model.Lane) string {
	switch lane {
	case model.LaneBasic:
		return c.baseURL + basicPath
	case model.LaneDetails:
		return c.baseURL + detailsPath
	case model.LaneReplyRates:
		return c.baseURL + replyRatesPath
	}
	return ""
}

func fetch[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	body, err := c.post(ctx, path)
	if err != nil {
		return nil, err
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrRequestFailed, path, err)
	}
	return env.Data, nil
}

// post performs a body-less POST and returns the response body.
func (c *Client) post(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrRequestFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	//nolint:gosec // URL is built from the configured base URL and a const path
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrRequestFailed, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}
	return body, nil
}
