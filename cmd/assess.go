package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadlens/leadlens/internal/stream"
)

// newAssessCmd runs one assessment end to end: the orchestrator streams
// frames into a pipe and the same consumer-side reducer the API's clients use
// folds them back into a snapshot, which is printed as JSON.
func newAssessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assess <url>",
		Short: "Assess a single landing page and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			pr, pw := io.Pipe()
			go func() {
				enc := stream.NewEncoder(pw, nil)
				_, runErr := a.Orchestrator.Run(cmd.Context(), args[0], enc)
				pw.CloseWithError(runErr)
			}()

			snap, err := stream.Reduce(pr)
			if err != nil {
				return fmt.Errorf("assess %s: %w", args[0], err)
			}
			if snap.ErrorText != "" {
				return fmt.Errorf("assess %s: %s", args[0], snap.ErrorText)
			}

			out := json.NewEncoder(os.Stdout)
			out.SetIndent("", "  ")
			if err := out.Encode(snap); err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			return nil
		},
	}
}
