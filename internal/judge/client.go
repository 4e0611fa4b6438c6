package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/leadlens/leadlens/internal/assess"
	"github.com/leadlens/leadlens/internal/metrics"
)

// Config controls the HTTP judge client.
type Config struct {
	Endpoint string
	APIKey   string
	// QuickTimeout and FullTimeout bound a single invocation per phase.
	QuickTimeout time.Duration
	FullTimeout  time.Duration
}

// Client is an HTTP implementation of Judge.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewClient builds an HTTP judge client. Endpoint must be non-empty.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("judge endpoint required")
	}
	if cfg.QuickTimeout <= 0 {
		cfg.QuickTimeout = 8 * time.Second
	}
	if cfg.FullTimeout <= 0 {
		cfg.FullTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger,
	}, nil
}

// Evaluate posts the request to the judgement service. Transport failures,
// non-2xx statuses, and undecodable bodies all wrap
// assess.ErrJudgeUnavailable so callers can degrade uniformly.
func (c *Client) Evaluate(ctx context.Context, req Request) (Response, error) {
	resp, err := c.evaluate(ctx, req)
	metrics.ObserveJudgeCall(string(req.Phase), err == nil)
	return resp, err
}

func (c *Client) evaluate(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout(req.Phase))
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal judge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build judge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("judge request failed: %w: %w", assess.ErrJudgeUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		c.logger.Warn("judge returned error status",
			zap.Int("status", httpResp.StatusCode),
			zap.ByteString("body", body),
		)
		return Response{}, fmt.Errorf("judge status %d: %w", httpResp.StatusCode, assess.ErrJudgeUnavailable)
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("decode judge response: %w: %w", assess.ErrJudgeUnavailable, err)
	}
	return resp, nil
}

func (c *Client) timeout(phase Phase) time.Duration {
	if phase == PhaseQuick {
		return c.cfg.QuickTimeout
	}
	return c.cfg.FullTimeout
}
