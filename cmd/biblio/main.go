// Package main provides the entry point for the biblio CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version      = "0.1.0-dev"
	globalEditor int64
	globalJSON   bool

	globalMetrics bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "biblio",
		Short:         "A revisioned bibliographic database",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Int64VarP(&globalEditor, "editor", "e", 0, "Editor ID recorded on revisions")
	rootCmd.PersistentFlags().BoolVar(&globalJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&globalMetrics, "metrics", false, "Print collected metrics to stderr when the command finishes")

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newShowCmd(),
		newListCmd(),
		newHistoryCmd(),
		newRevisionCmd(),
		newDiffCmd(),
		newEditorCmd(),
		newRelateCmd(),
		newRelationsCmd(),
		newSearchCmd(),
		newReindexCmd(),
		newImportCmd(),
		newTypesCmd(),
		newBotwCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
