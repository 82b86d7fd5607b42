package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

func TestClassifyError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ErrorUnknown},
		{"invalid input", &recipe.InvalidInputError{Input: "x"}, ErrorInvalidInput},
		{"unsupported", fmt.Errorf("route: %w", &recipe.UnsupportedSourceError{URL: "u", Kind: "website"}), ErrorUnsupported},
		{"no structured data", &recipe.NoStructuredDataError{URL: "u"}, ErrorNoStructuredData},
		{"not a recipe", &recipe.NotARecipeError{URL: "u", Platform: recipe.SourceTikTok}, ErrorNotARecipe},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), ErrorNotFound},
		{"http 429", &httpx.FetchError{URL: "u", Status: http.StatusTooManyRequests}, ErrorRateLimit},
		{"http 500", &httpx.FetchError{URL: "u", Status: 500}, ErrorNetwork},
		{"deadline", context.DeadlineExceeded, ErrorNetwork},
		{"parse", errors.New("AllRecipes parse failed: boom"), ErrorParsing},
		{"store", errors.New("store: insert recipe: locked"), ErrorStore},
		{"other", errors.New("boom"), ErrorUnknown},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrorInvalidInput))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrorUnsupported))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrorNotARecipe))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrorNetwork))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrorNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrorStore))
}

func TestSnapshotCounts(t *testing.T) {
	before := Snapshot()

	IncRecipeImported("AllRecipes")
	IncRecipeImported("")
	IncError(ErrorNetwork, "scraper_allrecipes")
	IncPagesFetched("scraper_allrecipes")
	ObserveImport("site", 500*time.Millisecond)
	ObserveImport("site", 0)

	after := Snapshot()
	assert.Equal(t, before.RecipesImported+2, after.RecipesImported)
	assert.Equal(t, before.RecipesBySource["AllRecipes"]+1, after.RecipesBySource["AllRecipes"])
	assert.Equal(t, before.RecipesBySource["unknown"]+1, after.RecipesBySource["unknown"])
	assert.Equal(t, before.ErrorsTotal+1, after.ErrorsTotal)
	assert.Equal(t, before.ErrorsByComponent["scraper_allrecipes"]+1, after.ErrorsByComponent["scraper_allrecipes"])
	assert.Equal(t, before.PagesFetched+1, after.PagesFetched)
	assert.Greater(t, after.ImportSecondsAvg, 0.0)

	// snapshots are copies
	after.RecipesBySource["AllRecipes"] = 0
	assert.NotZero(t, Snapshot().RecipesBySource["AllRecipes"])
}

func TestStatsBreakdowns(t *testing.T) {
	var s Stats

	s.PageFetched("scraper_allrecipes")
	s.PageFetched("scraper_allrecipes")
	s.PageFetched("scraper_food_network")
	s.VideoExtracted("YouTube")
	s.VideoExtracted("")
	s.Error(ErrorParsing, "")
	s.ImportTook("site", time.Second)
	s.ImportTook("site", 3*time.Second)
	s.ImportTook("video", 4*time.Second)
	s.ImportTook("video", -time.Second)

	got := s.Snapshot()
	assert.Equal(t, uint64(3), got.PagesFetched)
	assert.Equal(t, map[string]uint64{"scraper_allrecipes": 2, "scraper_food_network": 1}, got.PagesByComponent)
	assert.Equal(t, map[string]uint64{"YouTube": 1, "unknown": 1}, got.VideosByPlatform)
	assert.Equal(t, map[string]uint64{"unknown": 1}, got.ErrorsByComponent)
	assert.Equal(t, uint64(1), got.ErrorsTotal)
	assert.InDelta(t, 8.0/3, got.ImportSecondsAvg, 1e-9)
	assert.Equal(t, map[string]float64{"site": 2, "video": 4}, got.ImportSecondsByKind)
	assert.Empty(t, got.RecipesBySource)
	assert.NotNil(t, got.RecipesBySource)
}
