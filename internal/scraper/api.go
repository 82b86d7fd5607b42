package scraper

import (
	"context"

	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

// Fetcher is the transport the site adapters read pages through.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// SiteScraper recognizes one recipe website and extracts recipes from it.
type SiteScraper interface {
	// Name is the display name recorded as provenance.
	Name() string
	Recognizes(rawURL string) bool
	Scrape(ctx context.Context, rawURL string) (recipe.ScrapedRecipe, error)
	// RecipeID returns the site's own identifier for the recipe, or "".
	RecipeID(rawURL string) string
}
