package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var flags entityFlags

	cmd := &cobra.Command{
		Use:   "create <kind>",
		Short: "Create an entity",
		Long: `Creates a creator, publication, publisher, edition or work with its first revision.

Examples:
  biblio create creator --name "Franz Kafka" --data '{"creator_type_id":1}' -e 1
  biblio create publication -f trial.json -e 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editorID, err := requireEditor()
			if err != nil {
				return err
			}
			in, err := flags.build(cmd)
			if err != nil {
				return err
			}

			return withDeps(ctx, func(deps *Deps) error {
				state, err := deps.Entities.HandleCreate(ctx, args[0], in, editorID)
				if err != nil {
					return fmt.Errorf("creating entity: %w", err)
				}
				return printEntityState(state)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var flags entityFlags

	cmd := &cobra.Command{
		Use:   "update <bbid>",
		Short: "Edit an entity",
		Long: `Applies the given changes to the current snapshot of an entity and records
a new revision. Fields that are not given keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editorID, err := requireEditor()
			if err != nil {
				return err
			}
			in, err := flags.build(cmd)
			if err != nil {
				return err
			}

			return withDeps(ctx, func(deps *Deps) error {
				state, err := deps.Entities.HandleUpdate(ctx, args[0], in, editorID)
				if err != nil {
					return fmt.Errorf("updating entity: %w", err)
				}
				return printEntityState(state)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "delete <bbid>",
		Short: "Delete an entity",
		Long:  "Records a deleting revision. Earlier revisions stay readable.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editorID, err := requireEditor()
			if err != nil {
				return err
			}

			return withDeps(ctx, func(deps *Deps) error {
				state, err := deps.Entities.HandleDelete(ctx, args[0], note, editorID)
				if err != nil {
					return fmt.Errorf("deleting entity: %w", err)
				}
				fmt.Printf("Deleted %s in revision %d\n", state.Entity.BBID, state.Revision.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Revision note")
	return cmd
}

func newShowCmd() *cobra.Command {
	var revision int64

	cmd := &cobra.Command{
		Use:   "show <bbid>",
		Short: "Show an entity",
		Long:  "Shows an entity at its current revision, or at --revision.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withDeps(ctx, func(deps *Deps) error {
				state, err := deps.Entities.HandleShow(ctx, args[0], revision)
				if err != nil {
					return err
				}
				return printEntityState(state)
			})
		},
	}

	cmd.Flags().Int64VarP(&revision, "revision", "r", 0, "Revision to show")
	return cmd
}

func newListCmd() *cobra.Command {
	var (
		kind   string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities",
		Long:  "Lists entities, most recently updated first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withDeps(ctx, func(deps *Deps) error {
				result, err := deps.Entities.HandleList(ctx, kind, limit, offset)
				if err != nil {
					return fmt.Errorf("listing entities: %w", err)
				}
				if globalJSON {
					return printJSON(os.Stdout, result)
				}
				if len(result.Entities) == 0 {
					fmt.Println("No entities found.")
					return nil
				}
				printEntityList(os.Stdout, result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Filter by kind")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of entities to display")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entities to skip")
	return cmd
}
