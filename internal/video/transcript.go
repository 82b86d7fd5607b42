package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var captionTracksKey = []byte(`"captionTracks":`)

var errNoCaptions = errors.New("no caption tracks")

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

// Transcript returns the video's captions as one line of text. Any failure
// along the way yields "" so the caller falls back to the description.
func (y *YouTubeExtractor) Transcript(ctx context.Context, id string) string {
	text, err := y.transcript(ctx, id)
	if err != nil {
		y.logger.Debug("transcript unavailable, using description", "video_id", id, "error", err)
		return ""
	}
	return text
}

func (y *YouTubeExtractor) transcript(ctx context.Context, id string) (string, error) {
	page, err := y.fetcher.Get(ctx, y.baseURL+"/watch?v="+url.QueryEscape(id))
	if err != nil {
		return "", err
	}
	track, err := pickCaptionTrack(page)
	if err != nil {
		return "", err
	}
	captionURL := track.BaseURL
	if strings.HasPrefix(captionURL, "/") {
		captionURL = y.baseURL + captionURL
	}
	payload, err := y.fetcher.Get(ctx, captionURL)
	if err != nil {
		return "", err
	}
	return DecodeCaptions(payload)
}

// pickCaptionTrack prefers an English track and otherwise takes the first.
func pickCaptionTrack(page []byte) (captionTrack, error) {
	i := bytes.Index(page, captionTracksKey)
	if i < 0 {
		return captionTrack{}, errNoCaptions
	}
	// the decoder stops after the array, whatever the page holds next
	var tracks []captionTrack
	dec := json.NewDecoder(bytes.NewReader(page[i+len(captionTracksKey):]))
	if err := dec.Decode(&tracks); err != nil {
		return captionTrack{}, err
	}
	var chosen *captionTrack
	for i := range tracks {
		if tracks[i].BaseURL == "" {
			continue
		}
		if chosen == nil {
			chosen = &tracks[i]
		}
		if strings.HasPrefix(strings.ToLower(tracks[i].LanguageCode), "en") {
			chosen = &tracks[i]
			break
		}
	}
	if chosen == nil {
		return captionTrack{}, errNoCaptions
	}
	return *chosen, nil
}

// DecodeCaptions joins the <text> nodes of a timed-text payload with spaces.
// Markup is dropped and entities are unescaped.
func DecodeCaptions(payload []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(payload))
	var (
		parts  []string
		inText bool
		cur    strings.Builder
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return strings.Join(parts, " "), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "text" {
				inText = true
				cur.Reset()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "text" && inText {
				inText = false
				// captions sometimes double-escape, e.g. &amp;#39;
				line := strings.TrimSpace(html.UnescapeString(cur.String()))
				if line != "" {
					parts = append(parts, strings.Join(strings.Fields(line), " "))
				}
			}
		case html.TextToken:
			if inText {
				cur.Write(z.Text())
			}
		}
	}
}
