package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/recipe-hunter/internal/core"
	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/store"
)

const soupPage = `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Recipe","name":"Tomato Soup","recipeIngredient":["2 cups broth","1 pinch salt"],"recipeInstructions":[{"@type":"HowToStep","text":"Heat the broth."},{"@type":"HowToStep","text":"Season and serve."}],"cookTime":"PT25M","recipeYield":"4 servings"}</script>
</head><body></body></html>`

type fixture struct {
	handler http.Handler
	sites   *httptest.Server
	store   *store.Store
}

func newFixture(t *testing.T, description string) *fixture {
	t.Helper()

	sites := http.NewServeMux()
	sites.HandleFunc("/recipe/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(soupPage))
	})
	sitesSrv := httptest.NewServer(sites)
	t.Cleanup(sitesSrv.Close)

	yt := http.NewServeMux()
	yt.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"playabilityStatus": map[string]any{"status": "OK"},
			"videoDetails": map[string]any{
				"videoId":          "dQw4w9WgXcQ",
				"title":            "Weeknight Pancakes",
				"shortDescription": description,
				"lengthSeconds":    "120",
				"author":           "Breakfast Club",
			},
		})
	})
	yt.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	})
	ytSrv := httptest.NewServer(yt)
	t.Cleanup(ytSrv.Close)

	st, err := store.NewStore("sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.RunMigrations(context.Background()))

	// site pages are served through the proxy under their real hostnames
	siteFetcher := httpx.NewFetcher(httpx.Options{ProxyURL: sitesSrv.URL})
	importer := core.NewImportService(
		core.DefaultRecipeRouter(siteFetcher),
		core.DefaultVideoRouter(httpx.NewFetcher(httpx.Options{}), ytSrv.URL),
		st,
		nil,
	)
	return &fixture{
		handler: NewServer(importer, st, nil).Router(),
		sites:   sitesSrv,
		store:   st,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealthAndSources(t *testing.T) {
	f := newFixture(t, "")

	rec, _ := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec, body := f.do(t, http.MethodGet, "/sources", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"AllRecipes", "Food Network"}, body["sites"])
	assert.Equal(t, []any{"YouTube", "YouTube Shorts", "TikTok"}, body["platforms"])

	require.NoError(t, f.store.Close())
	rec, body = f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestScrapeListAndGetExternalRecipe(t *testing.T) {
	f := newFixture(t, "")
	sourceURL := "http://www.allrecipes.com/recipe/4242/tomato-soup/"

	rec, body := f.do(t, http.MethodPost, "/external-recipes/scrape", ScrapeRequest{URL: sourceURL})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Tomato Soup", body["title"])
	assert.Equal(t, "AllRecipes", body["sourceSite"])
	assert.Equal(t, "4242", body["sourceRecipeId"])
	assert.Equal(t, float64(25), body["cookTime"])
	assert.Equal(t, "Heat the broth.\nSeason and serve.", body["instructions"])
	require.Len(t, body["ingredients"], 2)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	rec, body = f.do(t, http.MethodGet, "/external-recipes?query=tomato&limit=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(maxPageLimit), body["limit"])
	require.Len(t, body["items"], 1)

	rec, body = f.do(t, http.MethodGet, "/external-recipes?sourceSite=Food+Network", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["total"])
	assert.Equal(t, []any{}, body["items"])

	rec, body = f.do(t, http.MethodGet, "/external-recipes/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sourceURL, body["sourceUrl"])

	rec, body = f.do(t, http.MethodGet, "/external-recipes/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, observability.ErrorNotFound, body["kind"])
}

func TestScrapeErrors(t *testing.T) {
	f := newFixture(t, "")

	testCases := []struct {
		name     string
		body     any
		wantCode int
		wantKind string
	}{
		{"malformed body", "{", http.StatusBadRequest, ""},
		{"missing url", ScrapeRequest{}, http.StatusBadRequest, ""},
		{"invalid url", ScrapeRequest{URL: "not a url"}, http.StatusBadRequest, observability.ErrorInvalidInput},
		{"unsupported site", ScrapeRequest{URL: "https://www.bbcgoodfood.com/recipes/soup"}, http.StatusBadRequest, observability.ErrorUnsupported},
		{"domain only in query", ScrapeRequest{URL: "https://www.bbcgoodfood.com/recipes/soup?via=allrecipes.com"}, http.StatusBadRequest, observability.ErrorUnsupported},
		{"fetch failure", ScrapeRequest{URL: "http://www.foodnetwork.com/recipes/x/gone"}, http.StatusBadRequest, observability.ErrorNetwork},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := f.do(t, http.MethodPost, "/external-recipes/scrape", tc.body)
			assert.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			assert.NotEmpty(t, body["error"])
			if tc.wantKind != "" {
				assert.Equal(t, tc.wantKind, body["kind"])
			}
		})
	}
}

func TestExtractAndListVideoRecipes(t *testing.T) {
	f := newFixture(t, "Ingredients: 2 cups flour, 1 egg. Steps: whisk everything and fry for 3 minutes.")

	rec, body := f.do(t, http.MethodPost, "/video-recipes/extract", ExtractVideoRequest{VideoURL: "https://youtu.be/dQw4w9WgXcQ"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Weeknight Pancakes", body["title"])
	assert.Equal(t, "YouTube", body["sourceType"])
	assert.Equal(t, "Breakfast Club", body["authorName"])
	assert.Contains(t, body["ingredients"], "2 cups flour")
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	rec, body = f.do(t, http.MethodGet, "/video-recipes?platform=YouTube", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total"])

	rec, body = f.do(t, http.MethodGet, "/video-recipes?platform=TikTok", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["items"])

	rec, _ = f.do(t, http.MethodGet, "/video-recipes/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/video-recipes/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractVideoErrors(t *testing.T) {
	f := newFixture(t, "#travel #sunset #vibes #friends")

	rec, body := f.do(t, http.MethodPost, "/video-recipes/extract", ExtractVideoRequest{VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, observability.ErrorNotARecipe, body["kind"])

	rec, body = f.do(t, http.MethodPost, "/video-recipes/extract", ExtractVideoRequest{VideoURL: "https://vimeo.com/123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, observability.ErrorUnsupported, body["kind"])

	rec, _ = f.do(t, http.MethodPost, "/video-recipes/extract", ExtractVideoRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	f := newFixture(t, "")
	f.do(t, http.MethodPost, "/external-recipes/scrape", ScrapeRequest{URL: "https://example.com/soup"})

	rec, body := f.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "pages_fetched")
	assert.GreaterOrEqual(t, body["errors_total"], float64(0))
}

func TestParsePagination(t *testing.T) {
	testCases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"limit=5&offset=10", 5, 10},
		{"limit=-1&offset=-4", 20, 0},
		{"limit=abc", 20, 0},
		{"limit=1000", maxPageLimit, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/external-recipes?"+tc.query, nil)
			limit, offset := parsePagination(req, 20)
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
		})
	}
}
