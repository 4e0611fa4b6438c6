// Package markup retrieves raw page markup using gocolly.
package markup

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/leadlens/leadlens/internal/assess"
)

// StrategyName identifies this strategy in logs and metrics.
const StrategyName = "markup"

const (
	defaultQuickBodyLimit = 512 * 1024
	defaultFullBodyLimit  = 5 * 1024 * 1024
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// QuickBodyLimit and FullBodyLimit cap the response body in bytes per
	// fetch mode. Zero selects the package defaults.
	QuickBodyLimit int
	FullBodyLimit  int
}

// Strategy fetches pages over plain HTTP using the Colly collector.
type Strategy struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a markup Strategy.
func New(cfg Config) *Strategy {
	if cfg.QuickBodyLimit <= 0 {
		cfg.QuickBodyLimit = defaultQuickBodyLimit
	}
	if cfg.FullBodyLimit <= 0 {
		cfg.FullBodyLimit = defaultFullBodyLimit
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Strategy{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Name implements fetch.Strategy.
func (s *Strategy) Name() string { return StrategyName }

// Fetch executes a single HTTP GET using Colly. Quick mode caps the body at a
// smaller size so truncated markup can still feed a provisional judgement.
func (s *Strategy) Fetch(ctx context.Context, url string, mode assess.FetchMode) (assess.RawPayload, error) {
	var (
		result   assess.RawPayload
		fetchErr error
	)
	start := time.Now()
	collector := s.buildCollector(mode, start, &result, &fetchErr)

	if err := s.runCollector(ctx, collector, url, &fetchErr); err != nil {
		return assess.RawPayload{}, err
	}
	return result, nil
}

func (s *Strategy) buildCollector(
	mode assess.FetchMode,
	start time.Time,
	result *assess.RawPayload,
	fetchErr *error,
) *colly.Collector {
	collector := s.baseCollector.Clone()
	if s.cfg.UserAgent != "" {
		collector.UserAgent = s.cfg.UserAgent
	}
	timeout := s.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.MaxBodySize = s.bodyLimit(mode)

	collector.OnResponse(func(r *colly.Response) {
		*result = assess.RawPayload{
			Kind:       assess.PayloadMarkup,
			URL:        r.Request.URL.String(),
			Body:       append([]byte(nil), r.Body...),
			Strategy:   StrategyName,
			StatusCode: r.StatusCode,
			Duration:   time.Since(start),
		}
	})

	collector.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})

	return collector
}

func (s *Strategy) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("markup fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("markup visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("markup response failed: %w", *fetchErr)
		}
		return nil
	}
}

func (s *Strategy) bodyLimit(mode assess.FetchMode) int {
	if mode == assess.ModeQuick {
		return s.cfg.QuickBodyLimit
	}
	return s.cfg.FullBodyLimit
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
