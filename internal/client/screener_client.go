// Package client implements the REST client for the screener backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/toshiwd/moomoo-like-sub001/internal/models"
)

// HealthTimeout bounds a single health probe request. Kept short so a hung
// backend never stalls the readiness loop.
const HealthTimeout = 5000 * time.Millisecond

// maxResponseBytes caps how much of a backend response body is read.
const maxResponseBytes = 16 << 20

// Client communicates with the screener backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client targeting the given backend base URL. timeout is the
// default per-request timeout; zero means 10s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Health probes GET /health. Any HTTP status is accepted: the status is
// returned for the caller to inspect, never converted to an error. The
// request is bounded by HealthTimeout. An error is returned only for
// transport failures (refused, timeout, bad body).
func (c *Client) Health(ctx context.Context) (models.HealthReport, int, error) {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	var report models.HealthReport

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return report, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return report, 0, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return report, resp.StatusCode, fmt.Errorf("failed to read health response: %w", err)
	}

	// Body may be empty or non-JSON on proxy errors; that is not a
	// transport failure, the status alone still carries information.
	if len(body) > 0 {
		_ = json.Unmarshal(body, &report)
	}

	return report, resp.StatusCode, nil
}

// List fetches the ticker universe from GET /list.
func (c *Client) List(ctx context.Context) ([]models.TickerEntry, error) {
	body, err := c.get(ctx, "/list")
	if err != nil {
		return nil, err
	}

	var result struct {
		Items []models.TickerEntry `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ticker list: %w", err)
	}
	return result.Items, nil
}

// BatchBars fetches chart payloads for up to batch-size codes in one round
// trip via POST /batch_{timeframe}. The response maps code -> payload; an
// items wrapper (older backend builds) is unwrapped transparently.
func (c *Client) BatchBars(ctx context.Context, tf models.Timeframe, codes []string) (map[string]models.BarPayload, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("unknown timeframe %q", tf)
	}

	payload, err := json.Marshal(map[string][]string{"codes": codes})
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, "/batch_"+string(tf), payload)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Items map[string]models.BarPayload `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}

	var flat map[string]models.BarPayload
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to parse batch bars response: %w", err)
	}
	delete(flat, "timeframe")
	return flat, nil
}

// Favorites fetches the favorites list from GET /favorites.
func (c *Client) Favorites(ctx context.Context) ([]models.Favorite, error) {
	body, err := c.get(ctx, "/favorites")
	if err != nil {
		return nil, err
	}

	var result struct {
		Items []models.Favorite `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse favorites: %w", err)
	}
	return result.Items, nil
}

// AddFavorite registers a code via POST /favorites/{code}.
func (c *Client) AddFavorite(ctx context.Context, code string) error {
	_, err := c.post(ctx, "/favorites/"+url.PathEscape(code), nil)
	return err
}

// RemoveFavorite removes a code via DELETE /favorites/{code}.
func (c *Client) RemoveFavorite(ctx context.Context, code string) error {
	_, err := c.do(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(code), nil)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// do issues a request and validates the status: non-2xx is returned as an
// error with the body excerpt. Health is the one caller that must not treat
// status as an error and goes through its own path.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend returned %d for %s %s: %s", resp.StatusCode, method, path, excerpt(respBody))
	}

	return respBody, nil
}

// excerpt truncates a response body for error messages.
func excerpt(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
