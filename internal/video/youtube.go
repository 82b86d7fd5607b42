package video

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/textparse"
)

const (
	DefaultYouTubeBaseURL = "https://www.youtube.com"

	youtubeClientName    = "WEB"
	youtubeClientVersion = "2.20240101.00.00"
)

var (
	youtubeIDRe   = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)
	youtubeHostRe = regexp.MustCompile(`youtube\.com|youtu\.be`)
)

// YouTubeVideoID returns the 11 character id from watch, short-link and
// shorts URLs, or "" when there is none.
func YouTubeVideoID(rawURL string) string {
	if m := youtubeIDRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

// IsYouTubeURL requires both a YouTube host and a usable video id.
func IsYouTubeURL(rawURL string) bool {
	return youtubeHostRe.MatchString(rawURL) && YouTubeVideoID(rawURL) != ""
}

type YouTubeExtractor struct {
	fetcher Fetcher
	baseURL string
	logger  *slog.Logger
}

func NewYouTubeExtractor(fetcher Fetcher, baseURL string, logger *slog.Logger) *YouTubeExtractor {
	if baseURL == "" {
		baseURL = DefaultYouTubeBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YouTubeExtractor{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (y *YouTubeExtractor) Platform() recipe.SourceType {
	return recipe.SourceYouTube
}

func (y *YouTubeExtractor) Recognizes(rawURL string) bool {
	return IsYouTubeURL(rawURL)
}

func (y *YouTubeExtractor) Extract(ctx context.Context, rawURL string) (*recipe.ScrapedVideoRecipe, error) {
	id := YouTubeVideoID(rawURL)
	if id == "" {
		return nil, &recipe.InvalidInputError{Input: rawURL, Err: fmt.Errorf("no YouTube video id")}
	}

	info, err := y.VideoInfo(ctx, id)
	if err != nil {
		observability.IncError(observability.ClassifyError(err), "video_youtube")
		return nil, err
	}

	transcript := y.Transcript(ctx, id)
	parsed := textparse.Parse(transcript, info.Description)
	if parsed == nil {
		return nil, nil
	}

	out := &recipe.ScrapedVideoRecipe{
		Title:        info.Title,
		Description:  parsed.Summary,
		Ingredients:  parsed.Ingredients,
		Instructions: parsed.Instructions,
		CookTime:     parsed.CookTime,
		Servings:     parsed.Servings,
		SourceType:   recipe.SourceYouTube,
		VideoID:      info.VideoID,
		SourceURL:    rawURL,
		AuthorName:   info.Channel,
		Duration:     info.DurationSeconds,
	}
	if len(info.Thumbnails) > 0 {
		out.ThumbnailURL = recipe.Ptr(info.Thumbnails[0])
	}
	observability.IncVideoExtracted(string(recipe.SourceYouTube))
	return out, nil
}

// YouTubeInfo is the subset of player metadata the extractor needs.
type YouTubeInfo struct {
	VideoID         string
	Title           string
	Description     string
	Thumbnails      []string
	DurationSeconds int
	Channel         string
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
			HL            string `json:"hl"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	VideoDetails *struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		ShortDescription string `json:"shortDescription"`
		LengthSeconds    string `json:"lengthSeconds"`
		Author           string `json:"author"`
		Thumbnail        struct {
			Thumbnails []struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// VideoInfo asks the player endpoint for title, description, duration,
// channel and thumbnails.
func (y *YouTubeExtractor) VideoInfo(ctx context.Context, id string) (*YouTubeInfo, error) {
	var req playerRequest
	req.Context.Client.ClientName = youtubeClientName
	req.Context.Client.ClientVersion = youtubeClientVersion
	req.Context.Client.HL = "en"
	req.VideoID = id

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	endpoint := y.baseURL + "/youtubei/v1/player"
	body, err := y.fetcher.Post(ctx, endpoint, "application/json", payload)
	if err != nil {
		return nil, err
	}

	var resp playerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("youtube player decode failed: %w", err)
	}
	d := resp.VideoDetails
	if d == nil {
		reason := resp.PlayabilityStatus.Reason
		if reason == "" {
			reason = resp.PlayabilityStatus.Status
		}
		return nil, &httpx.FetchError{URL: endpoint, Err: fmt.Errorf("no details for video %s: %s", id, reason)}
	}

	info := &YouTubeInfo{
		VideoID:     d.VideoID,
		Title:       d.Title,
		Description: d.ShortDescription,
		Channel:     d.Author,
	}
	if info.VideoID == "" {
		info.VideoID = id
	}
	if n, err := strconv.Atoi(d.LengthSeconds); err == nil {
		info.DurationSeconds = n
	}
	for _, t := range d.Thumbnail.Thumbnails {
		if t.URL != "" {
			info.Thumbnails = append(info.Thumbnails, t.URL)
		}
	}
	return info, nil
}
