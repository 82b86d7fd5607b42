package scraper

import "regexp"

var allRecipesIDRe = regexp.MustCompile(`/recipe/(\d+)`)

// AllRecipesScraper reads allrecipes.com recipe pages, e.g.
// https://www.allrecipes.com/recipe/12345/name/
type AllRecipesScraper struct {
	schemaSite
}

func NewAllRecipesScraper(fetcher Fetcher) *AllRecipesScraper {
	return &AllRecipesScraper{schemaSite{
		name:    "AllRecipes",
		domain:  "allrecipes.com",
		fetcher: fetcher,
	}}
}

func (a *AllRecipesScraper) RecipeID(rawURL string) string {
	if m := allRecipesIDRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}
