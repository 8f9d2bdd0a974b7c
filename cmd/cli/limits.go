package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLimitsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Show the AI call cooldown and hourly quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			defer svc.Close()

			st, err := svc.RateLimitStatus(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Calls in the last hour: %d/%d\n", st.CallsInWindow, st.MaxCalls)
			if st.Limited {
				fmt.Fprintf(out, "⏳ %s\n", st.Message)
			} else {
				fmt.Fprintln(out, "✅ Ready to search")
			}
			return nil
		},
	}
}
