package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadlens/leadlens/internal/api"
	"github.com/leadlens/leadlens/internal/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			logger := a.Logger
			metrics.Init()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(a.Orchestrator, a.Reports, a.Cfg, logger.Named("api"))
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.Cfg.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server started", zap.Int("port", a.Cfg.Server.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("http server: %w", err)
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			return nil
		},
	}
}
