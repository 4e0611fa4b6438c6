// Package fetch retrieves pages by racing independent strategies under a
// shared deadline and caches the normalized results.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leadlens/leadlens/internal/assess"
	"github.com/leadlens/leadlens/internal/metrics"
	"github.com/leadlens/leadlens/internal/page"
)

// Strategy retrieves one representation of a page. Implementations must honor
// ctx cancellation and return promptly once the deadline passes.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, url string, mode assess.FetchMode) (assess.RawPayload, error)
}

// Config controls fetch deadlines and the cache window.
type Config struct {
	QuickTimeout time.Duration
	FullTimeout  time.Duration
	CacheTTL     time.Duration
}

// Fetcher races retrieval strategies and normalizes the winning payload.
type Fetcher struct {
	strategies []Strategy
	cache      *Cache
	cfg        Config
	logger     *zap.Logger
}

// New builds a Fetcher over the given strategies. At least one strategy is
// required.
func New(cfg Config, clock assess.Clock, logger *zap.Logger, strategies ...Strategy) (*Fetcher, error) {
	if len(strategies) == 0 {
		return nil, errors.New("at least one retrieval strategy required")
	}
	if cfg.QuickTimeout <= 0 {
		cfg.QuickTimeout = 4 * time.Second
	}
	if cfg.FullTimeout <= 0 {
		cfg.FullTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		strategies: strategies,
		cache:      NewCache(cfg.CacheTTL, clock),
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Result is the outcome of one fetch. Payload is the winning raw payload and
// is zero when the document was served from the cache.
type Result struct {
	Document  assess.Document
	Payload   assess.RawPayload
	FromCache bool
}

// Fetch normalizes rawURL, consults the cache, and otherwise races every
// strategy under the mode's deadline. The first successful payload wins; a
// strategy that loses the race by failing simply falls out of contention.
// When every strategy fails, the error is an *assess.RetrievalError carrying
// the normalized URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, mode assess.FetchMode) (Result, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Result{}, err
	}

	// Quick and full retrievals cache separately: a quick-mode document may
	// be truncated or plaintext and must never stand in for the full fetch.
	key := modeKey(CacheKey(normalized), mode)
	if doc, ok := f.cache.Get(key); ok {
		metrics.ObserveCacheLookup(true)
		return Result{Document: doc, FromCache: true}, nil
	}
	metrics.ObserveCacheLookup(false)

	payload, err := f.race(ctx, normalized, mode)
	if err != nil {
		return Result{}, err
	}

	doc, err := page.Normalize(payload, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("normalize payload: %w", err)
	}

	f.cache.Put(key, doc)
	return Result{Document: doc, Payload: payload}, nil
}

func modeKey(key string, mode assess.FetchMode) string {
	return string(mode) + "|" + key
}

type strategyResult struct {
	payload assess.RawPayload
	err     error
	name    string
}

func (f *Fetcher) race(ctx context.Context, url string, mode assess.FetchMode) (assess.RawPayload, error) {
	raceCtx, cancel := context.WithTimeout(ctx, f.deadline(mode))
	defer cancel()

	results := make(chan strategyResult, len(f.strategies))
	for _, s := range f.strategies {
		go func(s Strategy) {
			start := time.Now()
			payload, err := s.Fetch(raceCtx, url, mode)
			metrics.ObserveFetch(s.Name(), err == nil, time.Since(start))
			results <- strategyResult{payload: payload, err: err, name: s.Name()}
		}(s)
	}

	var failures []error
	for pending := len(f.strategies); pending > 0; pending-- {
		select {
		case res := <-results:
			if res.err == nil {
				f.logger.Debug("retrieval strategy won",
					zap.String("strategy", res.name),
					zap.String("url", url),
					zap.String("mode", string(mode)),
				)
				return res.payload, nil
			}
			f.logger.Debug("retrieval strategy failed",
				zap.String("strategy", res.name),
				zap.String("url", url),
				zap.Error(res.err),
			)
			failures = append(failures, fmt.Errorf("%s: %w", res.name, res.err))
		case <-raceCtx.Done():
			failures = append(failures, raceCtx.Err())
			return assess.RawPayload{}, &assess.RetrievalError{URL: url, Cause: errors.Join(failures...)}
		}
	}
	return assess.RawPayload{}, &assess.RetrievalError{URL: url, Cause: errors.Join(failures...)}
}

func (f *Fetcher) deadline(mode assess.FetchMode) time.Duration {
	if mode == assess.ModeQuick {
		return f.cfg.QuickTimeout
	}
	return f.cfg.FullTimeout
}
