package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types [category]",
		Short: "List type codes",
		Long: `Lists the type codes entities and relationships refer to, optionally
restricted to one category (creator_type, language, relationship_type, ...).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			category := ""
			if len(args) == 1 {
				category = args[0]
			}

			return withDeps(ctx, func(deps *Deps) error {
				codes, err := deps.Types.HandleList(ctx, category)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, codes)
				}
				for _, tc := range codes {
					fmt.Printf("%-20s %4d  %s\n", tc.Category, tc.ID, tc.Label)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(newTypesAddCmd())
	return cmd
}

func newTypesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <id> <label>",
		Short: "Add a type code",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid type code ID %q", args[1])
			}

			return withDeps(ctx, func(deps *Deps) error {
				if err := deps.Types.HandleAdd(ctx, args[0], id, args[2]); err != nil {
					return err
				}
				fmt.Printf("Added %s %d: %s\n", args[0], id, args[2])
				return nil
			})
		},
	}
}
