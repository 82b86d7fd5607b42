package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/recipe-hunter/internal/core"
	"github.com/baxromumarov/recipe-hunter/internal/store"
)

var flagWorkers int

var importCmd = &cobra.Command{
	Use:   "import <url>...",
	Short: "Extract recipes from many URLs and save them",
	Long: `Import routes each URL to the website or video extractor, saves what it
finds and prints one outcome per URL in input order. Re-importing a URL
replaces the stored recipe.

Examples:
  recipectl import https://www.allrecipes.com/recipe/1/a/ https://youtu.be/dQw4w9WgXcQ
  recipectl import --db postgres://localhost/recipes?sslmode=disable --workers 8 <urls>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Concurrent imports (default: IMPORT_WORKERS)")
}

func runImport(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	st, err := store.NewStore(rt.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.RunMigrations(cmd.Context()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	workers := flagWorkers
	if workers <= 0 {
		workers = rt.cfg.ImportWorkers
	}
	svc := core.NewImportService(
		core.DefaultRecipeRouter(rt.fetcher),
		core.DefaultVideoRouter(rt.fetcher, rt.cfg.YouTubeBaseURL),
		st,
		rt.logger,
	)

	outcomes := svc.ImportMany(cmd.Context(), args, workers)
	if err := printJSON(cmd.OutOrStdout(), outcomes); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(outcomes))
	}
	return nil
}
