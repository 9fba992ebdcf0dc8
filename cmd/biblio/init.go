package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/biblio-core/internal/infrastructure/config"
	embedder "github.com/ersonp/biblio-core/internal/infrastructure/embedder/openai"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new biblio database",
		Long: `Creates a .biblio directory with default configuration, the SQLite schema
and the default type codes. When an embedder API key is configured the
Qdrant collection is created as well.`,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("biblio already initialized in %s", cwd)
	}

	if err := config.WriteDefault(cwd); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	fmt.Printf("Created %s\n", config.ConfigFilePath(cwd))

	return withDeps(ctx, func(deps *Deps) error {
		result, err := deps.Init.Handle(ctx, embedder.VectorSize)
		if err != nil {
			return err
		}

		fmt.Printf("Created database: %s\n", deps.Config.SQLite.Path)
		fmt.Printf("Seeded %d type codes\n", result.TypeCodes)
		if result.CollectionCreated {
			fmt.Printf("Created Qdrant collection: %s\n", deps.Config.Qdrant.Collection)
		}
		return nil
	})
}
