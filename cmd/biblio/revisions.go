package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "history <bbid>",
		Short: "Show the revision history of an entity",
		Long:  "Lists the revisions of an entity, newest first, with the fields each one changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withDeps(ctx, func(deps *Deps) error {
				result, err := deps.Revisions.HandleHistory(ctx, args[0], limit, offset)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, result)
				}
				for i := range result.Entries {
					entry := &result.Entries[i]
					printRevision(os.Stdout, &entry.Revision)
					if len(entry.Changed) > 0 {
						fmt.Printf("  Changed: %v\n", entry.Changed)
					}
					fmt.Println()
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultHistoryLimit, "Maximum number of revisions to display")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of revisions to skip")
	return cmd
}

func newRevisionCmd() *cobra.Command {
	var base int64

	cmd := &cobra.Command{
		Use:   "revision <id>",
		Short: "Show a revision and its changes",
		Long: `Shows a revision and diffs it against the revisions that follow it, or
against --base when given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseRevisionID(args[0])
			if err != nil {
				return err
			}

			return withDeps(ctx, func(deps *Deps) error {
				view, err := deps.Revisions.HandleGet(ctx, id, base)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, view)
				}
				printRevision(os.Stdout, &view.Revision)
				for _, c := range view.Changes {
					fmt.Println()
					if c.Against != nil {
						fmt.Printf("Against revision %d:\n", *c.Against)
					} else {
						fmt.Println("Against nothing:")
					}
					renderDelta(os.Stdout, c.Changes)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&base, "base", 0, "Revision to compare against")
	return cmd
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <older-revision> <newer-revision>",
		Short: "Diff two revisions of the same entity or relationship",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			older, err := parseRevisionID(args[0])
			if err != nil {
				return err
			}
			newer, err := parseRevisionID(args[1])
			if err != nil {
				return err
			}

			return withDeps(ctx, func(deps *Deps) error {
				delta, err := deps.Revisions.HandleCompare(ctx, older, newer)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(os.Stdout, delta)
				}
				renderDelta(os.Stdout, delta)
				return nil
			})
		},
	}
}

func parseRevisionID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid revision ID %q", s)
	}
	return id, nil
}
