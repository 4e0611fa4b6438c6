// Package app initializes and holds the long-lived services of the
// assessment service, acting as the dependency injection point for commands.
package app

import (
	"context"
	"fmt"
	"time"

	gpubsub "cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/leadlens/leadlens/internal/archive"
	"github.com/leadlens/leadlens/internal/clock/system"
	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/fetch"
	"github.com/leadlens/leadlens/internal/fetch/headless"
	"github.com/leadlens/leadlens/internal/fetch/markup"
	"github.com/leadlens/leadlens/internal/fetch/reader"
	"github.com/leadlens/leadlens/internal/id/uuid"
	"github.com/leadlens/leadlens/internal/judge"
	"github.com/leadlens/leadlens/internal/logging"
	"github.com/leadlens/leadlens/internal/orchestrator"
	"github.com/leadlens/leadlens/internal/publisher"
	memorypublisher "github.com/leadlens/leadlens/internal/publisher/memory"
	pubsubpublisher "github.com/leadlens/leadlens/internal/publisher/pubsub"
	"github.com/leadlens/leadlens/internal/store"
)

// App holds the shared services built from configuration.
type App struct {
	Cfg          config.Config
	Logger       *zap.Logger
	Orchestrator *orchestrator.Orchestrator
	Reports      store.ReportStore

	closers []func()
}

// New builds all services. It fails fast when any critical dependency cannot
// be initialized.
func New(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Cfg: cfg, Logger: logger}

	fetcher, err := a.buildFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	judgeClient, err := judge.NewClient(judge.Config{
		Endpoint:     cfg.Judge.Endpoint,
		APIKey:       cfg.Judge.APIKey,
		QuickTimeout: time.Duration(cfg.Judge.QuickTimeoutSeconds) * time.Second,
		FullTimeout:  time.Duration(cfg.Judge.FullTimeoutSeconds) * time.Second,
	}, logger.Named("judge"))
	if err != nil {
		return nil, fmt.Errorf("init judge client: %w", err)
	}

	reports, err := a.buildReportStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Reports = reports

	blobs, err := a.buildArchive(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	completion, err := a.buildPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.New(orchestrator.Deps{
		Fetcher:   fetcher,
		Judge:     judgeClient,
		Clock:     system.New(),
		IDs:       uuid.NewUUIDGenerator(),
		Logger:    logger.Named("orchestrator"),
		Store:     reports,
		Archive:   blobs,
		Publisher: completion,
	})
	if err != nil {
		return nil, fmt.Errorf("init orchestrator: %w", err)
	}
	a.Orchestrator = orch
	return a, nil
}

// Close releases every service that holds external resources.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	if a.Reports != nil {
		a.Reports.Close()
	}
}

func (a *App) buildFetcher(cfg config.Config, logger *zap.Logger) (*fetch.Fetcher, error) {
	strategies := []fetch.Strategy{
		markup.New(markup.Config{
			UserAgent:      cfg.Fetch.UserAgent,
			Timeout:        cfg.FullFetchTimeout(),
			QuickBodyLimit: cfg.Fetch.QuickBodyLimit,
			FullBodyLimit:  cfg.Fetch.FullBodyLimit,
		}),
	}
	if cfg.Fetch.ReaderBaseURL != "" {
		rs, err := reader.New(reader.Config{
			BaseURL:   cfg.Fetch.ReaderBaseURL,
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.FullFetchTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("init reader strategy: %w", err)
		}
		strategies = append(strategies, rs)
	}
	if cfg.Headless.Enabled {
		hs, err := headless.New(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Fetch.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Warn("headless strategy init failed, continuing without it", zap.Error(err))
		} else {
			strategies = append(strategies, hs)
			a.closers = append(a.closers, hs.Close)
		}
	}
	return fetch.New(fetch.Config{
		QuickTimeout: cfg.QuickFetchTimeout(),
		FullTimeout:  cfg.FullFetchTimeout(),
		CacheTTL:     cfg.CacheTTL(),
	}, system.New(), logger.Named("fetch"), strategies...)
}

func (a *App) buildReportStore(ctx context.Context, cfg config.Config) (store.ReportStore, error) {
	if cfg.DB.DSN == "" {
		return store.NewMemoryStore(), nil
	}
	ps, err := store.NewPostgresStore(ctx, store.PostgresConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: int32(cfg.DB.MaxOpenConns),
	})
	if err != nil {
		return nil, fmt.Errorf("init report store: %w", err)
	}
	return ps, nil
}

func (a *App) buildArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (archive.BlobStore, error) {
	switch cfg.Storage.Provider {
	case "local":
		ls, err := archive.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.Prefix)
		if err != nil {
			return nil, fmt.Errorf("init local archive: %w", err)
		}
		return ls, nil
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("close gcs client", zap.Error(err))
			}
		})
		gs, err := archive.NewGCSStore(client, cfg.Storage.GCSBucket, cfg.Storage.Prefix)
		if err != nil {
			return nil, fmt.Errorf("init gcs archive: %w", err)
		}
		return gs, nil
	default:
		return archive.NewMemoryStore(cfg.Storage.Prefix), nil
	}
}

func (a *App) buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (*publisher.CompletionNotifier, error) {
	if cfg.PubSub.ProjectID == "" {
		return publisher.NewCompletionNotifier(memorypublisher.New(), cfg.PubSub.TopicName), nil
	}
	client, err := gpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("init pubsub client: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			logger.Warn("close pubsub client", zap.Error(err))
		}
	})
	pub, err := pubsubpublisher.New(client)
	if err != nil {
		return nil, fmt.Errorf("init pubsub publisher: %w", err)
	}
	return publisher.NewCompletionNotifier(pub, cfg.PubSub.TopicName), nil
}
