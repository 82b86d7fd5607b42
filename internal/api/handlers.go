package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/store"
)

const maxPageLimit = 100

type ScrapeRequest struct {
	URL string `json:"url"`
}

type ExtractVideoRequest struct {
	VideoURL string `json:"videoUrl"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sites":     s.importer.Sites().SupportedSites(),
		"platforms": s.importer.Videos().SupportedPlatforms(),
	})
}

func (s *Server) handleScrapeRecipe(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		respondError(w, http.StatusBadRequest, "URL is required")
		return
	}

	saved, err := s.importer.ImportRecipe(r.Context(), req.URL)
	if err != nil {
		respondPipelineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleExtractVideoRecipe(w http.ResponseWriter, r *http.Request) {
	var req ExtractVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		respondError(w, http.StatusBadRequest, "Video URL is required")
		return
	}

	saved, err := s.importer.ImportVideoRecipe(r.Context(), req.VideoURL)
	if err != nil {
		respondPipelineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleListExternalRecipes(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)
	q := r.URL.Query()

	recipes, total, err := s.reader.ListExternalRecipes(r.Context(), store.ExternalRecipeFilter{
		Query:      strings.TrimSpace(q.Get("query")),
		SourceSite: strings.TrimSpace(q.Get("sourceSite")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch recipes: "+err.Error())
		return
	}
	if recipes == nil {
		recipes = []store.ExternalRecipe{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  recipes,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleGetExternalRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.reader.GetExternalRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondPipelineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListVideoRecipes(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)
	platform := strings.TrimSpace(r.URL.Query().Get("platform"))

	videos, total, err := s.reader.ListVideoRecipes(r.Context(), platform, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch video recipes: "+err.Error())
		return
	}
	if videos == nil {
		videos = []store.VideoRecipe{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  videos,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleGetVideoRecipe(w http.ResponseWriter, r *http.Request) {
	v, err := s.reader.GetVideoRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondPipelineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
