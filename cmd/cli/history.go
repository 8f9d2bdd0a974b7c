package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage search history",
	}

	cmd.AddCommand(
		newHistoryListCmd(c),
		&cobra.Command{
			Use:   "rename <old query> <new query>",
			Short: "Rename a history entry, keeping its cached result",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := c.service()
				if err != nil {
					return err
				}
				defer svc.Close()

				if err := svc.RenameHistoryItem(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Renamed %q to %q\n", args[0], strings.TrimSpace(args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <query>",
			Short: "Delete a history entry and its cached result",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := c.service()
				if err != nil {
					return err
				}
				defer svc.Close()

				id := strings.Join(args, " ")
				if err := svc.DeleteHistoryItem(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Deleted %q\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all history and cached results",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := c.service()
				if err != nil {
					return err
				}
				defer svc.Close()

				if err := svc.ClearHistory(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✅ History cleared")
				return nil
			},
		},
	)
	return cmd
}

func newHistoryListCmd(c *cli) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past searches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			defer svc.Close()

			entries, err := svc.SearchHistory(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				if strings.TrimSpace(filter) != "" {
					fmt.Fprintf(out, "📭 No searches match %q\n", filter)
					return nil
				}
				fmt.Fprintln(out, "📭 No searches yet")
				return nil
			}

			fmt.Fprintf(out, "📚 %d search(es):\n\n", len(entries))
			for i, e := range entries {
				when := time.UnixMilli(e.Timestamp).Local().Format("2006-01-02 15:04")
				fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, e.Query, when)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only list searches containing this text (case-insensitive)")
	return cmd
}
