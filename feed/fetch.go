package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultFetchTimeout bounds a single retrieval when no timeout is
// configured.
const DefaultFetchTimeout = 10 * time.Second

// Client retrieves remote payloads. A transport fault or a non-success
// status is returned as an error; the fetch stage treats either as a hard
// failure.
type Client struct {
	http *http.Client
}

// NewClient creates a retrieval client with the given per-request timeout.
// A zero or negative timeout falls back to DefaultFetchTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a blocking GET against url and returns the raw response
// body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("feed: fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: read body: %w", url, err)
	}
	return body, nil
}
