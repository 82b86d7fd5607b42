// Package recipe holds the normalized shapes produced by the extraction pipeline
// and the typed failures it reports.
package recipe

// Ingredient is one structured ingredient line from a website recipe.
// Quantity and Unit are nil when the line could not be split.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
}

// ScrapedRecipe is the uniform output of the website path.
type ScrapedRecipe struct {
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	Instructions string       `json:"instructions"`
	CookTime     *int         `json:"cookTime,omitempty"`
	Servings     *int         `json:"servings,omitempty"`
	ImageURL     *string      `json:"imageUrl,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// ScraperResult pairs a website recipe with its provenance.
type ScraperResult struct {
	Recipe         ScrapedRecipe `json:"recipe"`
	SourceSite     string        `json:"sourceSite"`
	SourceURL      string        `json:"sourceUrl"`
	SourceRecipeID string        `json:"sourceRecipeId,omitempty"`
}

type SourceType string

const (
	SourceYouTube SourceType = "YouTube"
	SourceTikTok  SourceType = "TikTok"
)

// ScrapedVideoRecipe is the uniform output of the video path. Ingredients are
// kept as raw caption strings, unlike ScrapedRecipe.Ingredients.
type ScrapedVideoRecipe struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	CookTime     *int       `json:"cookTime,omitempty"`
	Servings     *int       `json:"servings,omitempty"`
	SourceType   SourceType `json:"sourceType"`
	VideoID      string     `json:"videoId"`
	SourceURL    string     `json:"sourceUrl"`
	AuthorName   string     `json:"authorName"`
	Duration     int        `json:"duration"`
	ThumbnailURL *string    `json:"thumbnailUrl,omitempty"`
}

// Ptr returns a pointer to v. Used for the optional fields above.
func Ptr[T any](v T) *T {
	return &v
}
