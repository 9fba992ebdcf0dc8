package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/biblio-core/internal/domain/entities"
)

func newRelateCmd() *cobra.Command {
	var (
		texts []string
		note  string
	)

	cmd := &cobra.Command{
		Use:   "relate <type-id> <bbid> <bbid>...",
		Short: "Create a relationship between entities",
		Long: `Creates a relationship of a relationship_type code between two or more
entities. Entities take positions in the order given.

Examples:
  biblio relate 1 <creator-bbid> <work-bbid> -e 1
  biblio relate 3 <creator-bbid> <work-bbid> --text "from the German" -e 1`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editorID, err := requireEditor()
			if err != nil {
				return err
			}
			typeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid relationship type %q", args[0])
			}

			in := &entities.RelationshipInput{Note: note, TypeID: &typeID}
			for i, bbid := range args[1:] {
				in.Entities = append(in.Entities, entities.RelationshipEntity{BBID: bbid, Position: i})
			}
			for i, text := range texts {
				in.Texts = append(in.Texts, entities.RelationshipText{Text: text, Position: i})
			}

			return withDeps(ctx, func(deps *Deps) error {
				state, err := deps.Relationships.HandleCreate(ctx, in, editorID)
				if err != nil {
					return fmt.Errorf("creating relationship: %w", err)
				}
				return printRelationshipState(state)
			})
		},
	}

	cmd.Flags().StringSliceVar(&texts, "text", nil, "Free text attached to the relationship (repeatable)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Revision note")

	cmd.AddCommand(newRelateDeleteCmd())

	return cmd
}

func newRelateDeleteCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "delete <relationship-id>",
		Short: "Delete a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			editorID, err := requireEditor()
			if err != nil {
				return err
			}

			return withDeps(ctx, func(deps *Deps) error {
				state, err := deps.Relationships.HandleDelete(ctx, args[0], note, editorID)
				if err != nil {
					return fmt.Errorf("deleting relationship: %w", err)
				}
				fmt.Printf("Deleted relationship %s in revision %d\n", state.Relationship.ID, state.Revision.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Revision note")
	return cmd
}

func newRelationsCmd() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "relations <bbid>",
		Short: "List the relationships of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withDeps(ctx, func(deps *Deps) error {
				states, err := deps.Relationships.HandleList(ctx, args[0], limit, offset)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, states)
				}
				if len(states) == 0 {
					fmt.Println("No relationships found.")
					return nil
				}
				for i := range states {
					printRelationship(&states[i])
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of relationships to display")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of relationships to skip")
	return cmd
}

func printRelationshipState(state *entities.RelationshipState) error {
	if globalJSON {
		return printJSON(os.Stdout, state)
	}
	printRelationship(state)
	return nil
}

func printRelationship(state *entities.RelationshipState) {
	fmt.Printf("Relationship %s (revision %d)\n", state.Relationship.ID, state.Revision.ID)
	if state.Data == nil {
		fmt.Println("  (deleted)")
		return
	}
	fmt.Printf("  Type: %d\n", state.Data.TypeID)
	for _, e := range state.Data.Entities {
		fmt.Printf("  [%d] %s\n", e.Position, e.BBID)
	}
	for _, t := range state.Data.Texts {
		fmt.Printf("  [%d] %q\n", t.Position, t.Text)
	}
}
