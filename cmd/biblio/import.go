package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/biblio-core/internal/application/handlers"
)

type importFlags struct {
	format string
	dryRun bool
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import entities from JSON or CSV",
		Long:  "Creates one entity per record of a structured file. Each gets its own first revision.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	ctx := cmd.Context()

	editorID, err := requireEditor()
	if err != nil && !flags.dryRun {
		return err
	}

	return withDeps(ctx, func(deps *Deps) error {
		opts := handlers.ImportOptions{
			Format:   flags.format,
			DryRun:   flags.dryRun,
			EditorID: editorID,
		}

		fmt.Printf("Importing %s...\n", filePath)

		result, err := deps.Import.Handle(ctx, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if len(result.Errors) > 0 {
			fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		fmt.Println()
		if flags.dryRun {
			fmt.Printf("Dry run: %d entities would be imported", result.Imported)
		} else {
			fmt.Printf("Imported: %d entities", result.Imported)
		}
		if len(result.Errors) > 0 {
			fmt.Printf(", %d errors", len(result.Errors))
		}
		fmt.Println()

		return nil
	})
}
