package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"gateconsole/internal/logger"
)

const maxErrorBody = 4096

// Config configures the engine client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
	Metrics *Metrics
}

// Client calls the engine REST API. Each method maps to one endpoint.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	headers map[string]string
	client  *http.Client
	metrics *Metrics
}

// NewClient creates an engine client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("engine base URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
		metrics: cfg.Metrics,
	}, nil
}

// BaseURL returns the current engine base URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL re-points the client, e.g. after the connection setting changes.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()
	logger.Infof("Engine base URL set to %s", baseURL)
}

// WithBaseURL returns a client sharing transport settings but aimed at another
// engine. Used to test a connection before saving it.
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: c.headers,
		client:  c.client,
		metrics: c.metrics,
	}
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if id := RequestID(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.observe(endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("engine request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.observe(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read engine response: %w", err)
	}
	logger.Debugf("engine %s %s -> %d (%d bytes)", method, path, resp.StatusCode, len(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(data),
		}
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, out interface{}) error {
	data, err := c.do(ctx, endpoint, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return decode(path, data, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	data, err := c.do(ctx, endpoint, http.MethodPost, path, body, "application/json")
	if err != nil {
		return err
	}
	return decode(path, data, out)
}

func decode(path string, data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
