// Package cli implements the recipectl commands using Cobra.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/recipe-hunter/internal/config"
	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/logging"
)

// Persistent flag variables.
var (
	flagEnvFile string
	flagDB      string
)

var rootCmd = &cobra.Command{
	Use:   "recipectl",
	Short: "recipectl: extract recipes from recipe sites and cooking videos",
	Long: `recipectl turns recipe URLs into normalized recipes.

Website recipes (AllRecipes, Food Network) are read from their embedded
schema.org data. YouTube and TikTok videos are parsed from their captions
and descriptions.

Usage:
  recipectl scrape <url>
  recipectl video <url>
  recipectl import <url>... [--workers n]
  recipectl sites`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel in-flight fetches.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Optional .env file with settings")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database URL (overrides DATABASE_URL)")
}

// runtime is what every command needs: settings, a logger and the fetcher.
type runtime struct {
	cfg     config.Config
	logger  *slog.Logger
	fetcher *httpx.Fetcher
}

func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DatabaseURL = flagDB
	}
	return &runtime{
		cfg:     cfg,
		logger:  logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()),
		fetcher: httpx.NewFetcher(cfg.FetcherOptions()),
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
