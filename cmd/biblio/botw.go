package main

import (
	"github.com/spf13/cobra"
)

func newBotwCmd() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "botw",
		Short: "Show the book of the week",
		Long:  "Shows the featured publication. --pick chooses a new one at random. Requires Redis.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withDeps(ctx, func(deps *Deps) error {
				state, err := deps.Featured.HandleGet(ctx, pick)
				if err != nil {
					return err
				}
				return printEntityState(state)
			})
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "Pick a new featured publication")
	return cmd
}
