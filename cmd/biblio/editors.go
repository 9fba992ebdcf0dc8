package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/biblio-core/internal/application/handlers"
	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
)

func newEditorCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "editor <id>",
		Short: "Show an editor and their latest revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseEditorID(args[0])
			if err != nil {
				return err
			}

			return withDeps(ctx, func(deps *Deps) error {
				editor, err := deps.Editors.HandleGet(ctx, id)
				if err != nil {
					return err
				}
				revs, err := deps.Revisions.HandleList(ctx, ports.RevisionFilter{EditorID: id, Limit: limit})
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, map[string]any{"editor": editor, "revisions": revs})
				}

				printEditor(os.Stdout, editor)
				fmt.Println()
				for i := range revs {
					printRevision(os.Stdout, &revs[i])
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultHistoryLimit, "Maximum number of revisions to display")
	cmd.AddCommand(newEditorAddCmd(), newEditorListCmd())
	return cmd
}

func newEditorAddCmd() *cobra.Command {
	var in handlers.RegisterInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an editor",
		Long: `Registers an editor in the directory. With --id, fills in the profile of
an editor that already has revisions under that ID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(deps *Deps) error {
				editor, err := deps.Editors.HandleRegister(ctx, in)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, editor)
				}
				fmt.Printf("Registered editor %d: %s\n", editor.ID, editor.Name)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&in.ID, "id", 0, "Existing editor ID to update")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address (required)")
	cmd.Flags().Int64Var(&in.EditorTypeID, "type", 1, "Editor type code (see 'types editor_type')")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newEditorListCmd() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered editors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(deps *Deps) error {
				result, err := deps.Editors.HandleList(ctx, limit, offset)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, result)
				}
				if result.Count == 0 {
					fmt.Println("No editors found.")
					return nil
				}
				for i := range result.Editors {
					printEditor(os.Stdout, &result.Editors[i])
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of editors")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of editors to skip")
	return cmd
}

func parseEditorID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid editor ID %q", s)
	}
	return id, nil
}

func editorLabel(e *entities.Editor) string {
	if e.Name == "" {
		return "(unregistered)"
	}
	if e.Email == "" {
		return e.Name
	}
	return fmt.Sprintf("%s <%s>", e.Name, e.Email)
}
