package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/himanishpuri/lyricfinder/internal/app"
	"github.com/himanishpuri/lyricfinder/internal/config"
)

var (
	configPath     string
	port           string
	dbPath         string
	logLevel       string
	allowedOrigins string
)

func init() {
	flag.StringVar(&configPath, "config", getEnvOrDefault("LYRICS_CONFIG", ""), "Path to a YAML or TOML config file")
	flag.StringVar(&port, "port", "8080", "HTTP server port")
	flag.StringVar(&dbPath, "db", "lyricfinder.sqlite3", "Path to SQLite database")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func main() {
	flag.Parse()

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given explicitly win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = port
		case "db":
			cfg.DBPath = dbPath
		case "log-level":
			cfg.LogLevel = logLevel
		}
	})

	logr, err := app.ConfigureLogger(cfg)
	if err != nil {
		logr.Warnf("%v, using %s", err, logr.Level())
	}

	if err := cfg.ValidatePort(); err != nil {
		logr.Fatalf("Invalid configuration: %v", err)
	}

	service, err := app.NewService(cfg, logr)
	if err != nil {
		logr.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, app.NewScraper(cfg), &ServerConfig{
		Port:           cfg.Port,
		DBPath:         cfg.DBPath,
		AIProvider:     cfg.AI.Provider,
		AllowedOrigins: parseOrigins(allowedOrigins),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logr.Errorf("Server failed: %v", err)
		service.Close()
		os.Exit(1)
	}
}
