package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/recipe-hunter/internal/core"
	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/store"
)

// RecipeReader is the read side of the store used by the list and detail
// endpoints.
type RecipeReader interface {
	GetExternalRecipe(ctx context.Context, id string) (store.ExternalRecipe, error)
	ListExternalRecipes(ctx context.Context, f store.ExternalRecipeFilter) ([]store.ExternalRecipe, int, error)
	GetVideoRecipe(ctx context.Context, id string) (store.VideoRecipe, error)
	ListVideoRecipes(ctx context.Context, platform string, limit, offset int) ([]store.VideoRecipe, int, error)
}

type Server struct {
	router   *chi.Mux
	importer *core.ImportService
	reader   RecipeReader
	origins  []string
}

func NewServer(importer *core.ImportService, reader RecipeReader, allowedOrigins []string) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	s := &Server{
		router:   chi.NewRouter(),
		importer: importer,
		reader:   reader,
		origins:  allowedOrigins,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/sources", s.handleListSources)

	s.router.Route("/external-recipes", func(r chi.Router) {
		r.Get("/", s.handleListExternalRecipes)
		r.Post("/scrape", s.handleScrapeRecipe)
		r.Get("/{id}", s.handleGetExternalRecipe)
	})
	s.router.Route("/video-recipes", func(r chi.Router) {
		r.Get("/", s.handleListVideoRecipes)
		r.Post("/extract", s.handleExtractVideoRecipe)
		r.Get("/{id}", s.handleGetVideoRecipe)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.reader.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "Database unavailable: "+err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondPipelineError maps a pipeline or store failure onto its HTTP status.
func respondPipelineError(w http.ResponseWriter, err error) {
	kind := observability.ClassifyError(err)
	respondJSON(w, observability.HTTPStatus(kind), map[string]string{
		"error": err.Error(),
		"kind":  kind,
	})
}
