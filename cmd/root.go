// Package cmd defines the leadlens command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadlens/leadlens/internal/app"
)

var cfgFile string

type appKeyType struct{}

var appKey appKeyType

// newApp is the application factory; tests replace it with a stub.
var newApp = func(ctx context.Context, cfgPath string) (*app.App, error) {
	return app.New(ctx, cfgPath)
}

// appFromContext retrieves the App injected by the root PersistentPreRunE.
func appFromContext(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leadlens",
		Short: "Streaming landing-page conversion assessment service.",
		Long: `leadlens fetches a landing page, scores it against a fixed catalog of
conversion criteria via an external judgement service, and streams the
assessment as newline-delimited JSON frames.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAssessCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
