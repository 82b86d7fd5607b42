package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/store"
	"github.com/baxromumarov/recipe-hunter/internal/video"
)

// RecipeStore is the persistence ImportService writes to. *store.Store
// satisfies it.
type RecipeStore interface {
	SaveExternalRecipe(ctx context.Context, res recipe.ScraperResult) (store.ExternalRecipe, error)
	SaveVideoRecipe(ctx context.Context, v recipe.ScrapedVideoRecipe) (store.VideoRecipe, error)
}

// ImportService runs a router and persists what it returns. Website recipes
// keep structured ingredients; video recipes keep raw strings.
type ImportService struct {
	sites  *RecipeRouter
	videos *VideoRouter
	store  RecipeStore
	logger *slog.Logger
}

func NewImportService(sites *RecipeRouter, videos *VideoRouter, st RecipeStore, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{sites: sites, videos: videos, store: st, logger: logger}
}

func (s *ImportService) Sites() *RecipeRouter {
	return s.sites
}

func (s *ImportService) Videos() *VideoRouter {
	return s.videos
}

func (s *ImportService) ImportRecipe(ctx context.Context, rawURL string) (store.ExternalRecipe, error) {
	start := time.Now()
	log := s.logger.With("request_id", uuid.NewString(), "url", rawURL, "family", "site")

	res, err := s.sites.ScrapeRecipeFromURL(ctx, rawURL)
	if err != nil {
		log.Warn("recipe import failed", "error", err, "kind", observability.ClassifyError(err))
		return store.ExternalRecipe{}, err
	}
	saved, err := s.store.SaveExternalRecipe(ctx, res)
	if err != nil {
		observability.IncError(observability.ErrorStore, "import_site")
		log.Error("failed to save recipe", "error", err)
		return store.ExternalRecipe{}, err
	}

	observability.IncRecipeImported(res.SourceSite)
	observability.ObserveImport("site", time.Since(start))
	log.Info("recipe imported", "id", saved.ID, "source_site", res.SourceSite, "ingredients", len(saved.Ingredients))
	return saved, nil
}

func (s *ImportService) ImportVideoRecipe(ctx context.Context, rawURL string) (store.VideoRecipe, error) {
	start := time.Now()
	log := s.logger.With("request_id", uuid.NewString(), "url", rawURL, "family", "video")

	v, err := s.videos.ScrapeVideoRecipeFromURL(ctx, rawURL)
	if err != nil {
		log.Warn("video import failed", "error", err, "kind", observability.ClassifyError(err))
		return store.VideoRecipe{}, err
	}
	saved, err := s.store.SaveVideoRecipe(ctx, *v)
	if err != nil {
		observability.IncError(observability.ErrorStore, "import_video")
		log.Error("failed to save video recipe", "error", err)
		return store.VideoRecipe{}, err
	}

	observability.IncRecipeImported(string(v.SourceType))
	observability.ObserveImport("video", time.Since(start))
	log.Info("video recipe imported", "id", saved.ID, "platform", v.SourceType, "ingredients", len(v.Ingredients))
	return saved, nil
}

// ImportOutcome is the result of importing one URL in a batch.
type ImportOutcome struct {
	URL   string `json:"url"`
	ID    string `json:"id,omitempty"`
	Kind  string `json:"kind"`
	Error string `json:"error,omitempty"`
}

// IsVideoURL reports whether rawURL belongs to a supported video platform.
func IsVideoURL(rawURL string) bool {
	return video.IsYouTubeURL(rawURL) || video.IsTikTokURL(rawURL)
}

// ImportMany imports urls with at most workers in flight, routing each to the
// website or video family. Outcomes keep the input order.
func (s *ImportService) ImportMany(ctx context.Context, urls []string, workers int) []ImportOutcome {
	if workers <= 0 {
		workers = 4
	}
	out := make([]ImportOutcome, len(urls))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, u := range urls {
		select {
		case <-ctx.Done():
			out[i] = ImportOutcome{URL: u, Kind: observability.ErrorNetwork, Error: ctx.Err().Error()}
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := ImportOutcome{URL: u}
			var (
				id  string
				err error
			)
			if IsVideoURL(u) {
				var v store.VideoRecipe
				v, err = s.ImportVideoRecipe(ctx, u)
				id, outcome.Kind = v.ID, "video"
			} else {
				var r store.ExternalRecipe
				r, err = s.ImportRecipe(ctx, u)
				id, outcome.Kind = r.ID, "site"
			}
			if err != nil {
				outcome.Kind = observability.ClassifyError(err)
				outcome.Error = err.Error()
			} else {
				outcome.ID = id
			}
			out[i] = outcome
		}(i, u)
	}
	wg.Wait()
	return out
}
