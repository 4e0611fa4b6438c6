// Package reader retrieves a plain-text rendition of a page through a
// reader-proxy service.
package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leadlens/leadlens/internal/assess"
)

// StrategyName identifies this strategy in logs and metrics.
const StrategyName = "reader"

// maxBody caps the proxy response body in bytes.
const maxBody = 2 * 1024 * 1024

// Config controls the reader strategy.
type Config struct {
	// BaseURL is the reader proxy endpoint. The target URL is appended as a
	// path segment: <BaseURL>/<target>.
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Strategy fetches a text rendition via the reader proxy.
type Strategy struct {
	cfg    Config
	client *http.Client
}

// New builds a reader Strategy. BaseURL must be non-empty.
func New(cfg Config) (*Strategy, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("reader base url required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Strategy{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Name implements fetch.Strategy.
func (s *Strategy) Name() string { return StrategyName }

// Fetch issues a GET to the proxy and returns the body as plain text. The
// rendition has no markup, so structural extraction downstream is degraded.
func (s *Strategy) Fetch(ctx context.Context, url string, _ assess.FetchMode) (assess.RawPayload, error) {
	start := time.Now()
	target := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + url

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return assess.RawPayload{}, fmt.Errorf("build reader request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return assess.RawPayload{}, fmt.Errorf("reader request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return assess.RawPayload{}, fmt.Errorf("reader returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return assess.RawPayload{}, fmt.Errorf("read reader body: %w", err)
	}

	return assess.RawPayload{
		Kind:       assess.PayloadPlainText,
		URL:        url,
		Body:       body,
		Strategy:   StrategyName,
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
	}, nil
}
