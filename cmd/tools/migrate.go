// Command migrate creates or upgrades the recipe-hunter schema without
// starting the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/baxromumarov/recipe-hunter/internal/config"
	"github.com/baxromumarov/recipe-hunter/internal/logging"
	"github.com/baxromumarov/recipe-hunter/internal/store"
)

const usage = `Usage: migrate [-db URL] [-env-file PATH]

Creates the external_recipes, external_ingredients and video_recipes tables
and adds columns introduced by newer releases. Safe to run repeatedly.

`

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run returns the process exit code: 0 on success, 1 when the store cannot
// be migrated and 2 for bad flags or settings.
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env-file", ".env", "optional .env file with DATABASE_URL and LOG_* settings")
	dbURL := fs.String("db", "", "recipe store to migrate; overrides DATABASE_URL (sqlite:<path> or postgres://...)")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if *dbURL != "" {
		cfg.DatabaseURL = *dbURL
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)

	backend := "postgres"
	if strings.HasPrefix(cfg.DatabaseURL, "sqlite:") {
		backend = "sqlite"
	}

	st, err := store.NewStore(cfg.DatabaseURL)
	if err != nil {
		logger.Error("migrate: recipe store unreachable", "backend", backend, "error", err)
		return 1
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	started := time.Now()
	if err := st.RunMigrations(ctx); err != nil {
		logger.Error("migrate: schema update failed", "backend", backend, "error", err)
		return 1
	}
	logger.Info("migrate: recipe schema up to date", "backend", backend, "took", time.Since(started).Round(time.Millisecond))
	return 0
}
