// Package directory fetches the nested country/state/user payload from the user
// directory endpoint and flattens it into table records.
package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chybatronik/goUsersTable/internal/validation"
)

var (
	// ErrUpstreamStatus is returned when the directory answers with a non-2xx status.
	ErrUpstreamStatus = errors.New("directory: unexpected upstream status")
	// ErrMalformedPayload is returned when the body is not the expected nested JSON.
	ErrMalformedPayload = errors.New("directory: malformed payload")
	// ErrPayloadTooLarge is returned when the body is over the client's size limit.
	ErrPayloadTooLarge = errors.New("directory: payload too large")
)

// Fetcher retrieves the raw directory payload
type Fetcher interface {
	FetchRaw(ctx context.Context) ([]byte, error)
	URL() string
}

// Client performs one GET against the directory endpoint per call. There is no retry.
type Client struct {
	url        string
	httpClient *http.Client
	maxBody    int64
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxBodySize bounds the accepted response size
func WithMaxBodySize(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

// NewClient creates a client for url whose requests give up after timeout
func NewClient(url string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    validation.MaxUpstreamPayloadSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the directory endpoint
func (c *Client) URL() string {
	return c.url
}

// FetchRaw returns the response body of a single GET
func (c *Client) FetchRaw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := validation.ReadLimited(resp.Body, c.maxBody)
	if errors.Is(err, validation.ErrPayloadTooLarge) {
		return nil, fmt.Errorf("%w: %w", ErrPayloadTooLarge, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory response: %w", err)
	}

	return body, nil
}
