package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/lyricfinder/pkg/lyrics"
	"github.com/himanishpuri/lyricfinder/pkg/models"
)

func newSearchCmd(c *cli) *cobra.Command {
	var fromHistory bool

	cmd := &cobra.Command{
		Use:   "search <song or artist>",
		Short: "Search lyrics for a song",
		Long: `Search asks the AI model for the song's lyrics and details.

With --history a cached result for the same query is shown instead of
calling the model again. Both modes respect the cooldown and hourly limit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			defer svc.Close()

			mode := lyrics.ModeTyped
			if fromHistory {
				mode = lyrics.ModeHistory
			}

			out := cmd.OutOrStdout()
			query := strings.Join(args, " ")
			fmt.Fprintf(out, "🔍 Searching for %q...\n", query)

			res, err := svc.Search(cmd.Context(), query, mode)
			if err != nil {
				return err
			}

			switch res.State {
			case lyrics.StateBlocked:
				return errors.New(res.Message)
			case lyrics.StateSuperseded:
				return errors.New("search was superseded")
			}

			if res.FromCache {
				fmt.Fprintln(out, "   (from history cache)")
			}
			if res.Warning != "" {
				fmt.Fprintf(out, "⚠️  %s\n", res.Warning)
			}
			printResult(out, res.Result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromHistory, "history", false, "Use the cached result for this query when one exists")
	return cmd
}

func printResult(w io.Writer, r *models.LyricSearchResult) {
	if r == nil {
		return
	}

	fmt.Fprintln(w)
	if r.SongTitle != "" {
		fmt.Fprintf(w, "🎵 %s\n", r.SongTitle)
	}
	if r.ArtistMetadata != nil {
		fmt.Fprintf(w, "   Artist:   %s\n", r.ArtistMetadata.Name)
		if r.ArtistMetadata.Bio != "" {
			fmt.Fprintf(w, "   Bio:      %s\n", r.ArtistMetadata.Bio)
		}
	}
	if r.OriginalLanguage != "" {
		fmt.Fprintf(w, "   Language: %s\n", r.OriginalLanguage)
	}

	section := func(title, body string) {
		if body == "" {
			return
		}
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", title, strings.Repeat("-", len(title)), body)
	}
	section("About", r.SongDescription)
	if r.HasEnglishLyrics() && r.OriginalLyrics != r.EnglishLyrics {
		section("Original Lyrics", r.OriginalLyrics)
	}
	section("English Lyrics", r.EnglishLyrics)
	section("Romanized Lyrics", r.RomanizedLyrics)

	if len(r.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, s := range r.Sources {
			fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, s.Title, s.URI)
		}
	}
}
