package core

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/scraper"
	"github.com/baxromumarov/recipe-hunter/internal/video"
)

// RecipeRouter dispatches website URLs to the first site adapter that
// recognizes them. Adapters are tried in registration order.
type RecipeRouter struct {
	sites []scraper.SiteScraper
}

func NewRecipeRouter(sites ...scraper.SiteScraper) *RecipeRouter {
	return &RecipeRouter{sites: sites}
}

// DefaultRecipeRouter registers every supported cooking website.
func DefaultRecipeRouter(fetcher scraper.Fetcher) *RecipeRouter {
	return NewRecipeRouter(
		scraper.NewAllRecipesScraper(fetcher),
		scraper.NewFoodNetworkScraper(fetcher),
	)
}

func (r *RecipeRouter) SupportedSites() []string {
	names := make([]string, 0, len(r.sites))
	for _, s := range r.sites {
		names = append(names, s.Name())
	}
	return names
}

// ScrapeRecipeFromURL validates rawURL, then scrapes it with the matching
// adapter. Malformed input fails before any network access.
func (r *RecipeRouter) ScrapeRecipeFromURL(ctx context.Context, rawURL string) (recipe.ScraperResult, error) {
	target := strings.TrimSpace(rawURL)
	if err := ValidateURL(target); err != nil {
		observability.IncError(observability.ErrorInvalidInput, "router_site")
		return recipe.ScraperResult{}, err
	}

	for _, site := range r.sites {
		if !site.Recognizes(target) {
			continue
		}
		scraped, err := site.Scrape(ctx, target)
		if err != nil {
			return recipe.ScraperResult{}, err
		}
		return recipe.ScraperResult{
			Recipe:         scraped,
			SourceSite:     site.Name(),
			SourceURL:      target,
			SourceRecipeID: site.RecipeID(target),
		}, nil
	}

	observability.IncError(observability.ErrorUnsupported, "router_site")
	return recipe.ScraperResult{}, &recipe.UnsupportedSourceError{
		URL:       target,
		Kind:      "recipe source",
		Supported: r.SupportedSites(),
	}
}

// videoRoute pairs an extractor with the platform labels it answers for.
type videoRoute struct {
	extractor video.Extractor
	labels    []string
}

// VideoRouter dispatches video URLs to the matching platform extractor.
type VideoRouter struct {
	routes []videoRoute
}

func NewVideoRouter(youtube, tiktok video.Extractor) *VideoRouter {
	return &VideoRouter{routes: []videoRoute{
		{extractor: youtube, labels: []string{"YouTube", "YouTube Shorts"}},
		{extractor: tiktok, labels: []string{"TikTok"}},
	}}
}

func DefaultVideoRouter(fetcher video.Fetcher, youtubeBaseURL string) *VideoRouter {
	return NewVideoRouter(
		video.NewYouTubeExtractor(fetcher, youtubeBaseURL, nil),
		video.NewTikTokExtractor(fetcher),
	)
}

func (v *VideoRouter) SupportedPlatforms() []string {
	var out []string
	for _, r := range v.routes {
		out = append(out, r.labels...)
	}
	return out
}

// ScrapeVideoRecipeFromURL extracts a recipe from a supported video. A video
// that was read but holds no recipe fails with *recipe.NotARecipeError.
func (v *VideoRouter) ScrapeVideoRecipeFromURL(ctx context.Context, rawURL string) (*recipe.ScrapedVideoRecipe, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		observability.IncError(observability.ErrorInvalidInput, "router_video")
		return nil, &recipe.InvalidInputError{Input: rawURL, Err: errors.New("empty URL")}
	}

	for _, r := range v.routes {
		if !r.extractor.Recognizes(target) {
			continue
		}
		out, err := r.extractor.Extract(ctx, target)
		if err != nil {
			return nil, err
		}
		if out == nil {
			observability.IncError(observability.ErrorNotARecipe, "router_video")
			return nil, &recipe.NotARecipeError{URL: target, Platform: r.extractor.Platform()}
		}
		return out, nil
	}

	observability.IncError(observability.ErrorUnsupported, "router_video")
	return nil, &recipe.UnsupportedSourceError{
		URL:       target,
		Kind:      "video platform",
		Supported: v.SupportedPlatforms(),
	}
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &recipe.InvalidInputError{Input: rawURL, Err: errors.New("empty URL")}
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return &recipe.InvalidInputError{Input: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &recipe.InvalidInputError{Input: rawURL, Err: errors.New("scheme must be http or https")}
	}
	if u.Host == "" {
		return &recipe.InvalidInputError{Input: rawURL, Err: errors.New("missing host")}
	}
	return nil
}
