package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gateconsole/internal/logger"
	"gateconsole/pkg/models"
)

// HTTPConfig configures the webhook sink.
type HTTPConfig struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// HTTPWriter posts each audit entry to a remote endpoint.
type HTTPWriter struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewHTTPWriter creates a webhook sink.
func NewHTTPWriter(cfg HTTPConfig) (*HTTPWriter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("audit http URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger.Infof("Audit HTTP writer initialized: %s", cfg.URL)
	return &HTTPWriter{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Record posts one entry. A zero timestamp is set to now.
func (w *HTTPWriter) Record(entry models.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("audit request failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("audit request failed with status %s", resp.Status)
	}
	return nil
}

// Close releases HTTP resources.
func (w *HTTPWriter) Close() error {
	return nil
}
