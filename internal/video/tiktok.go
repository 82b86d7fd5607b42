package video

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/textparse"
)

const (
	defaultTikTokTitle  = "TikTok Recipe"
	defaultTikTokAuthor = "TikTok Creator"
	unknownTikTokID     = "unknown"

	// TikTok pages do not expose length in their meta tags.
	estimatedTikTokSeconds = 30
)

var (
	tiktokHostRe   = regexp.MustCompile(`tiktok\.com|vm\.tiktok|vt\.tiktok`)
	tiktokIDRes    = []*regexp.Regexp{regexp.MustCompile(`/video/(\d+)`), regexp.MustCompile(`^(\d+)$`)}
	tiktokAuthorRe = regexp.MustCompile(`@([a-zA-Z0-9._-]+)`)
)

// TikTokVideoID returns the numeric id from a /video/ path or a bare id.
func TikTokVideoID(rawURL string) string {
	for _, re := range tiktokIDRes {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

func IsTikTokURL(rawURL string) bool {
	return tiktokHostRe.MatchString(rawURL)
}

type TikTokExtractor struct {
	fetcher Fetcher
}

func NewTikTokExtractor(fetcher Fetcher) *TikTokExtractor {
	return &TikTokExtractor{fetcher: fetcher}
}

func (t *TikTokExtractor) Platform() recipe.SourceType {
	return recipe.SourceTikTok
}

func (t *TikTokExtractor) Recognizes(rawURL string) bool {
	return IsTikTokURL(rawURL)
}

func (t *TikTokExtractor) Extract(ctx context.Context, rawURL string) (*recipe.ScrapedVideoRecipe, error) {
	info, err := t.VideoInfo(ctx, rawURL)
	if err != nil {
		observability.IncError(observability.ClassifyError(err), "video_tiktok")
		return nil, err
	}

	// the caption is the only text a TikTok page gives us
	parsed := textparse.Parse(info.Description, "")
	if parsed == nil {
		return nil, nil
	}

	observability.IncVideoExtracted(string(recipe.SourceTikTok))
	return &recipe.ScrapedVideoRecipe{
		Title:        info.Title,
		Description:  parsed.Summary,
		Ingredients:  parsed.Ingredients,
		Instructions: parsed.Instructions,
		CookTime:     parsed.CookTime,
		Servings:     parsed.Servings,
		SourceType:   recipe.SourceTikTok,
		VideoID:      info.VideoID,
		SourceURL:    rawURL,
		AuthorName:   info.Author,
		Duration:     info.DurationSeconds,
		ThumbnailURL: info.CoverURL,
	}, nil
}

// TikTokInfo is what the public video page reveals through Open Graph tags.
type TikTokInfo struct {
	VideoID         string
	Title           string
	Description     string
	Author          string
	DurationSeconds int
	CoverURL        *string
}

func (t *TikTokExtractor) VideoInfo(ctx context.Context, rawURL string) (*TikTokInfo, error) {
	body, err := t.fetcher.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tiktok page parse failed: %w", err)
	}

	info := &TikTokInfo{
		VideoID:         TikTokVideoID(rawURL),
		Title:           meta(doc, "og:title"),
		Description:     meta(doc, "og:description"),
		Author:          defaultTikTokAuthor,
		DurationSeconds: estimatedTikTokSeconds,
	}
	if info.VideoID == "" {
		info.VideoID = unknownTikTokID
	}
	if info.Title == "" {
		info.Title = defaultTikTokTitle
	}
	if m := tiktokAuthorRe.FindStringSubmatch(rawURL); m != nil {
		info.Author = m[1]
	}
	if img := meta(doc, "og:image"); img != "" {
		info.CoverURL = &img
	}
	return info, nil
}

func meta(doc *goquery.Document, key string) string {
	if v, ok := doc.Find(fmt.Sprintf(`meta[property="%s"]`, key)).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(fmt.Sprintf(`meta[name="%s"]`, key)).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
