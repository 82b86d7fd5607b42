package content

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const recipeType = "Recipe"

// ParseRecipeSchema scans every application/ld+json block in rawHTML and
// returns the first Recipe-typed object. Malformed blocks are skipped.
// A nil result with a nil error means the page carries no recipe metadata.
func ParseRecipeSchema(rawHTML string) (*RecipeSchema, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	var found *RecipeSchema
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			slog.Debug("skipping malformed json-ld block", "index", i, "error", err)
			return true
		}
		if m := findRecipe(payload); m != nil {
			found = schemaFromMap(m)
			return false
		}
		return true
	})
	return found, nil
}

func findRecipe(payload any) map[string]any {
	switch t := payload.(type) {
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				if m := findRecipe(item); m != nil {
					return m
				}
			}
		}
	case []any:
		for _, item := range t {
			if m := findRecipe(item); m != nil {
				return m
			}
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == recipeType
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == recipeType {
				return true
			}
		}
	}
	return false
}
