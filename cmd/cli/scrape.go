package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newScrapeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   `scrape "<artist> <title>"`,
		Short: "Fetch romaji lyrics from lyrical-nonsense.com",
		Long: `Scrape fetches the romaji lyrics page for a Japanese song. The first
word is the artist, the rest is the title. It does not use the AI, the
history or the rate limit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.scraper().Lookup(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🎵 %s by %s\n", res.Title, res.Artist)
			fmt.Fprintf(out, "   %s\n\n", res.URL)
			for _, line := range res.Lyrics {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
