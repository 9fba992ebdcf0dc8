package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search entities",
		Long:  "Searches entity names and text semantically. A BBID query resolves directly to that entity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withDeps(ctx, func(deps *Deps) error {
				search, err := deps.RequireSearch()
				if err != nil {
					return err
				}
				result, err := search.HandleSearch(ctx, args[0], kind, limit)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, result)
				}
				if len(result.Hits) == 0 {
					fmt.Println("No results found.")
					return nil
				}
				for _, hit := range result.Hits {
					fmt.Printf("%.3f  %-12s  %s  %s\n", hit.Score, hit.Kind, hit.BBID, hit.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Restrict results to one kind")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")
	return cmd
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index",
		Long:  "Embeds the current state of every entity and stores it in the search index.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withDeps(ctx, func(deps *Deps) error {
				search, err := deps.RequireSearch()
				if err != nil {
					return err
				}
				count, err := search.HandleReindex(ctx)
				if err != nil {
					return fmt.Errorf("reindexing: %w", err)
				}
				fmt.Printf("Indexed %d entities\n", count)
				return nil
			})
		},
	}
}
