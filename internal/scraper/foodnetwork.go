package scraper

import (
	"regexp"
	"strings"
)

var foodNetworkPathRe = regexp.MustCompile(`/recipes/([^?#]+)`)

// FoodNetworkScraper reads foodnetwork.com recipe pages. Their JSON-LD has
// the same shape as AllRecipes, so only identity differs.
type FoodNetworkScraper struct {
	schemaSite
}

func NewFoodNetworkScraper(fetcher Fetcher) *FoodNetworkScraper {
	return &FoodNetworkScraper{schemaSite{
		name:    "Food Network",
		domain:  "foodnetwork.com",
		fetcher: fetcher,
	}}
}

// RecipeID returns the recipe slug, the last path segment under /recipes/:
// /recipes/food-network-kitchen/pie-1234567 gives "pie-1234567".
func (f *FoodNetworkScraper) RecipeID(rawURL string) string {
	m := foodNetworkPathRe.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	segs := strings.Split(strings.Trim(m[1], "/"), "/")
	return segs[len(segs)-1]
}
