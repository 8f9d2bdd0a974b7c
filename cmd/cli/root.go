package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/lyricfinder/internal/app"
	"github.com/himanishpuri/lyricfinder/internal/config"
	"github.com/himanishpuri/lyricfinder/pkg/logger"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics"
	"github.com/himanishpuri/lyricfinder/pkg/lyrics/scraper"
)

// cli holds what the subcommands share. cfg is filled in PersistentPreRunE.
type cli struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "lyricfinder",
		Short: "Look up song lyrics, translations and romanizations",
		Long: `lyricfinder asks a generative model for a song's lyrics, English
translation, romanization and background, and keeps a local history of
searches with cached results.

The API key is read from API_KEY or the config file.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML or TOML config file")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "Path to the SQLite database file")
	root.PersistentFlags().StringVar(&c.logLevel, "log", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newSearchCmd(c),
		newHistoryCmd(c),
		newLimitsCmd(c),
		newScrapeCmd(c),
	)
	return root
}

func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.LoadWithEnv(c.configPath)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	} else if cfg.LogLevel == "info" {
		// Keep the terminal quiet unless asked.
		cfg.LogLevel = "warn"
	}

	log, err := app.ConfigureLogger(cfg)
	if err != nil {
		return err
	}
	log.SetOutput(cmd.ErrOrStderr())

	c.cfg = cfg
	c.log = log
	return nil
}

func (c *cli) service() (lyrics.Service, error) {
	svc, err := app.NewService(c.cfg, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func (c *cli) scraper() *scraper.Client {
	return app.NewScraper(c.cfg)
}
