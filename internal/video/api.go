// Package video extracts recipes from cooking videos by reading platform
// metadata and captions and handing their text to the free-text parser.
package video

import (
	"context"

	"github.com/baxromumarov/recipe-hunter/internal/recipe"
)

// Fetcher is the transport the extractors use. *httpx.Fetcher satisfies it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
	Post(ctx context.Context, rawURL, contentType string, body []byte) ([]byte, error)
}

// Extractor handles one video platform. Extract returns a nil recipe and a
// nil error when the video was read but does not look like a recipe.
type Extractor interface {
	Platform() recipe.SourceType
	Recognizes(rawURL string) bool
	Extract(ctx context.Context, rawURL string) (*recipe.ScrapedVideoRecipe, error)
}
