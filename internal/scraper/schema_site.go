package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/baxromumarov/recipe-hunter/internal/content"
	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/urlutil"
)

// schemaSite is the shared scrape path for sites that publish Recipe JSON-LD.
type schemaSite struct {
	name    string
	domain  string
	fetcher Fetcher
}

func (s *schemaSite) Name() string {
	return s.name
}

// Recognizes matches the site's domain against the URL host only, so a
// domain mentioned in the path or query does not count.
func (s *schemaSite) Recognizes(rawURL string) bool {
	return urlutil.HostMatches(rawURL, s.domain)
}

func (s *schemaSite) Scrape(ctx context.Context, rawURL string) (recipe.ScrapedRecipe, error) {
	body, err := s.fetcher.Get(ctx, rawURL)
	if err != nil {
		observability.IncError(observability.ClassifyError(err), s.component())
		return recipe.ScrapedRecipe{}, err
	}
	observability.IncPagesFetched(s.component())

	schema, err := content.ParseRecipeSchema(string(body))
	if err != nil {
		observability.IncError(observability.ErrorParsing, s.component())
		return recipe.ScrapedRecipe{}, fmt.Errorf("%s parse failed: %w", s.name, err)
	}
	if schema == nil {
		observability.IncError(observability.ErrorNoStructuredData, s.component())
		return recipe.ScrapedRecipe{}, &recipe.NoStructuredDataError{URL: rawURL}
	}
	return content.ToScrapedRecipe(schema), nil
}

func (s *schemaSite) component() string {
	return "scraper_" + strings.ReplaceAll(strings.ToLower(s.name), " ", "_")
}
