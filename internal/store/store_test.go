package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.RunMigrations(context.Background()))
	// migrations are idempotent
	require.NoError(t, s.RunMigrations(context.Background()))
	return s
}

func soupResult(url string) recipe.ScraperResult {
	return recipe.ScraperResult{
		Recipe: recipe.ScrapedRecipe{
			Title:        "Soup",
			Description:  recipe.Ptr("A warm bowl"),
			Instructions: "Heat and serve.",
			CookTime:     recipe.Ptr(20),
			Servings:     recipe.Ptr(4),
			Ingredients: []recipe.Ingredient{
				{Name: "broth", Quantity: recipe.Ptr(2.0), Unit: recipe.Ptr("cups")},
				{Name: "salt to taste"},
			},
		},
		SourceSite:     "AllRecipes",
		SourceURL:      url,
		SourceRecipeID: "12345",
	}
}

func TestSaveAndGetExternalRecipe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveExternalRecipe(ctx, soupResult("https://www.allrecipes.com/recipe/12345/soup/"))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := s.GetExternalRecipe(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Title)
	assert.Equal(t, "A warm bowl", *got.Description)
	assert.Equal(t, 20, *got.CookTime)
	assert.Equal(t, 4, *got.Servings)
	assert.Nil(t, got.ImageURL)
	assert.Equal(t, "AllRecipes", got.SourceSite)
	assert.Equal(t, "12345", got.SourceRecipeID)
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "broth", got.Ingredients[0].Name)
	assert.InDelta(t, 2.0, *got.Ingredients[0].Quantity, 1e-9)
	assert.Equal(t, "cups", *got.Ingredients[0].Unit)
	assert.Equal(t, "salt to taste", got.Ingredients[1].Name)
	assert.Nil(t, got.Ingredients[1].Quantity)
	assert.Nil(t, got.Ingredients[1].Unit)
}

func TestSaveExternalRecipeUpsertsBySourceURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveExternalRecipe(ctx, soupResult("https://www.allrecipes.com/recipe/12345/soup/"))
	require.NoError(t, err)

	again := soupResult("https://allrecipes.com/recipe/12345/soup?utm_source=newsletter")
	again.Recipe.Title = "Better Soup"
	again.Recipe.Ingredients = again.Recipe.Ingredients[:1]
	second, err := s.SaveExternalRecipe(ctx, again)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Better Soup", second.Title)
	assert.Len(t, second.Ingredients, 1)

	_, total, err := s.ListExternalRecipes(ctx, ExternalRecipeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListExternalRecipesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, r := range []recipe.ScraperResult{
		withTitle(soupResult("https://allrecipes.com/recipe/1/a"), "Tomato Soup", "AllRecipes"),
		withTitle(soupResult("https://allrecipes.com/recipe/2/b"), "Lentil Stew", "AllRecipes"),
		withTitle(soupResult("https://foodnetwork.com/recipes/c-3/"), "Chicken SOUP", "Food Network"),
	} {
		_, err := s.SaveExternalRecipe(ctx, r)
		require.NoError(t, err)
	}

	testCases := []struct {
		name   string
		filter ExternalRecipeFilter
		total  int
	}{
		{"all", ExternalRecipeFilter{}, 3},
		{"query is case-insensitive", ExternalRecipeFilter{Query: "soup"}, 2},
		{"by site", ExternalRecipeFilter{SourceSite: "Food Network"}, 1},
		{"query and site", ExternalRecipeFilter{Query: "soup", SourceSite: "AllRecipes"}, 1},
		{"no match", ExternalRecipeFilter{Query: "cake"}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := s.ListExternalRecipes(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.total, total)
			assert.Len(t, items, tc.total)
			for _, item := range items {
				assert.NotEmpty(t, item.Ingredients)
			}
		})
	}

	page, total, err := s.ListExternalRecipes(ctx, ExternalRecipeFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}

func withTitle(r recipe.ScraperResult, title, site string) recipe.ScraperResult {
	r.Recipe.Title = title
	r.SourceSite = site
	return r
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetExternalRecipe(ctx, "missing")
	assert.True(t, errors.Is(err, observability.ErrNotFound))

	_, err = s.GetVideoRecipe(ctx, "missing")
	assert.True(t, errors.Is(err, observability.ErrNotFound))
}

func videoRecipe(url string, platform recipe.SourceType) recipe.ScrapedVideoRecipe {
	return recipe.ScrapedVideoRecipe{
		Title:        "Easy Bread",
		Description:  "Ingredients: 2 cups flour",
		Ingredients:  []string{"2 cups flour", "1 egg"},
		Instructions: []string{"mix everything and bake for 20 minutes."},
		CookTime:     recipe.Ptr(20),
		SourceType:   platform,
		VideoID:      "dQw4w9WgXcQ",
		SourceURL:    url,
		AuthorName:   "Kitchen Channel",
		Duration:     245,
		ThumbnailURL: recipe.Ptr("https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg"),
	}
}

func TestSaveAndListVideoRecipes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	yt, err := s.SaveVideoRecipe(ctx, videoRecipe("https://youtu.be/dQw4w9WgXcQ", recipe.SourceYouTube))
	require.NoError(t, err)
	assert.Equal(t, []string{"2 cups flour", "1 egg"}, yt.Ingredients)
	assert.Equal(t, recipe.SourceYouTube, yt.SourceType)
	assert.Equal(t, 245, yt.Duration)
	assert.Nil(t, yt.Servings)
	require.NotNil(t, yt.ThumbnailURL)

	tk := videoRecipe("https://www.tiktok.com/@chef/video/1", recipe.SourceTikTok)
	tk.Ingredients = nil
	tk.ThumbnailURL = nil
	saved, err := s.SaveVideoRecipe(ctx, tk)
	require.NoError(t, err)
	assert.Empty(t, saved.Ingredients)
	assert.Nil(t, saved.ThumbnailURL)

	// same video again, different tracking params
	again, err := s.SaveVideoRecipe(ctx, videoRecipe("https://youtu.be/dQw4w9WgXcQ?si=share", recipe.SourceYouTube))
	require.NoError(t, err)
	assert.Equal(t, yt.ID, again.ID)

	all, total, err := s.ListVideoRecipes(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	onlyTikTok, total, err := s.ListVideoRecipes(ctx, string(recipe.SourceTikTok), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, onlyTikTok, 1)
	assert.Equal(t, saved.ID, onlyTikTok[0].ID)
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: dialectPostgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", pg.rebind("SELECT 1 WHERE a = ? AND b = ?"))

	lite := &Store{dialect: dialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 100))
	assert.Equal(t, 100, clampLimit(500, 20, 100))
	assert.Equal(t, 5, clampLimit(5, 20, 100))
	assert.Equal(t, 0, clampOffset(-3))
}

func TestStaleSourceURLs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveExternalRecipe(ctx, soupResult("https://www.allrecipes.com/recipe/1/soup"))
	require.NoError(t, err)
	_, err = s.SaveVideoRecipe(ctx, videoRecipe("https://youtu.be/dQw4w9WgXcQ", recipe.SourceYouTube))
	require.NoError(t, err)
	_, err = s.SaveExternalRecipe(ctx, soupResult("https://www.allrecipes.com/recipe/2/stew"))
	require.NoError(t, err)

	got, err := s.StaleSourceURLs(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.StaleSourceURLs(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.allrecipes.com/recipe/1/soup",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.allrecipes.com/recipe/2/stew",
	}, got)

	got, err = s.StaleSourceURLs(ctx, time.Now().Add(time.Hour), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMarkRefreshAttemptedMovesRecipeToBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, u := range []string{"https://www.allrecipes.com/recipe/1/soup", "https://www.allrecipes.com/recipe/2/stew"} {
		_, err := s.SaveExternalRecipe(ctx, soupResult(u))
		require.NoError(t, err)
	}
	_, err := s.SaveVideoRecipe(ctx, videoRecipe("https://youtu.be/dQw4w9WgXcQ", recipe.SourceYouTube))
	require.NoError(t, err)

	// matched by normalized URL, so tracking noise is fine
	attempted := time.Now()
	require.NoError(t, s.MarkRefreshAttempted(ctx, []string{
		"https://allrecipes.com/recipe/1/soup/?utm_source=feed",
		"https://example.com/never-imported",
	}, attempted))

	got, err := s.StaleSourceURLs(ctx, time.Now().Add(time.Hour), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.allrecipes.com/recipe/2/stew"}, got)

	got, err = s.StaleSourceURLs(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.allrecipes.com/recipe/2/stew",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.allrecipes.com/recipe/1/soup",
	}, got)

	// the attempt counts even though the row itself was not updated
	got, err = s.StaleSourceURLs(ctx, attempted, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.allrecipes.com/recipe/2/stew", "https://youtu.be/dQw4w9WgXcQ"}, got)
}

func TestRunMigrationsAddsRefreshColumnToOldTables(t *testing.T) {
	s, err := NewStore("sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	_, err = s.db.ExecContext(ctx, `CREATE TABLE external_recipes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    instructions TEXT NOT NULL DEFAULT '',
    cook_time INTEGER,
    servings INTEGER,
    image_url TEXT,
    source_site TEXT NOT NULL,
    source_url TEXT NOT NULL,
    url_key TEXT NOT NULL UNIQUE,
    source_recipe_id TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`)
	require.NoError(t, err)

	require.NoError(t, s.RunMigrations(ctx))
	require.NoError(t, s.RunMigrations(ctx))

	_, err = s.SaveExternalRecipe(ctx, soupResult("https://www.allrecipes.com/recipe/1/soup"))
	require.NoError(t, err)
	got, err := s.StaleSourceURLs(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.allrecipes.com/recipe/1/soup"}, got)
}
