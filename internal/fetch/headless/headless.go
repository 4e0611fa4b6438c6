// Package headless retrieves fully rendered markup via headless Chrome.
package headless

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/leadlens/leadlens/internal/assess"
)

// StrategyName identifies this strategy in logs and metrics.
const StrategyName = "headless"

// Config controls the behavior of the headless strategy.
type Config struct {
	MaxParallel       int
	UserAgent         string
	NavigationTimeout time.Duration
}

// Strategy fetches pages with chromedp so that script-rendered content is
// present in the returned markup.
type Strategy struct {
	cfg         Config
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
}

// New creates a headless strategy backed by chromedp.
func New(cfg Config) (*Strategy, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Strategy{
		cfg:         cfg,
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close cancels the allocator context.
func (s *Strategy) Close() {
	s.allocCancel()
}

// Name implements fetch.Strategy.
func (s *Strategy) Name() string { return StrategyName }

// Fetch navigates with a headless browser and returns the rendered DOM.
func (s *Strategy) Fetch(ctx context.Context, url string, _ assess.FetchMode) (assess.RawPayload, error) {
	if err := s.acquire(ctx); err != nil {
		return assess.RawPayload{}, err
	}
	defer s.release()

	taskCtx, taskCancel := chromedp.NewContext(s.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, s.cfg.NavigationTimeout)
	defer cancel()

	// Propagate cancellation of the race to the browser task.
	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-taskCtx.Done():
		}
	}()

	meta := newResponseMeta()
	chromedp.ListenTarget(taskCtx, meta.captureEvent)

	start := time.Now()
	html, finalURL, err := s.runHeadless(taskCtx, url)
	if err != nil {
		return assess.RawPayload{}, err
	}

	status, responseURL := meta.snapshotWithFallbacks(url, finalURL)

	return assess.RawPayload{
		Kind:       assess.PayloadMarkup,
		URL:        responseURL,
		Body:       []byte(html),
		Strategy:   StrategyName,
		StatusCode: status,
		Duration:   time.Since(start),
	}, nil
}

func (s *Strategy) runHeadless(ctx context.Context, url string) (string, string, error) {
	var (
		html     string
		finalURL string
	)
	actions := []chromedp.Action{
		s.networkSetupAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, finalURL, nil
}

func (s *Strategy) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if s.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(s.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func (s *Strategy) acquire(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	select {
	case s.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("headless slot wait canceled: %w", ctx.Err())
	}
}

func (s *Strategy) release() {
	if s.limiter == nil {
		return
	}
	select {
	case <-s.limiter:
	default:
	}
}

type responseMeta struct {
	mu     sync.RWMutex
	status int
	url    string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	m.mu.Lock()
	m.status = int(resp.Response.Status)
	m.url = resp.Response.URL
	m.mu.Unlock()
}

func (m *responseMeta) snapshotWithFallbacks(requestURL, finalURL string) (int, string) {
	m.mu.RLock()
	status, url := m.status, m.url
	m.mu.RUnlock()

	switch {
	case url != "":
	case finalURL != "":
		url = finalURL
	default:
		url = requestURL
	}
	if status == 0 {
		status = 200
	}
	return status, url
}
