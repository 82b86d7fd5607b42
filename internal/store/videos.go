package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/urlutil"
)

// VideoRecipe is a video recipe. Its ingredients stay raw caption strings.
type VideoRecipe struct {
	ID string `json:"id"`
	recipe.ScrapedVideoRecipe
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveVideoRecipe inserts v, or replaces the stored recipe with the same
// normalized source URL.
func (s *Store) SaveVideoRecipe(ctx context.Context, v recipe.ScrapedVideoRecipe) (VideoRecipe, error) {
	key, _, err := urlutil.Normalize(v.SourceURL)
	if err != nil {
		return VideoRecipe{}, &recipe.InvalidInputError{Input: v.SourceURL, Err: err}
	}
	ingredients, err := json.Marshal(nonNil(v.Ingredients))
	if err != nil {
		return VideoRecipe{}, err
	}
	instructions, err := json.Marshal(nonNil(v.Instructions))
	if err != nil {
		return VideoRecipe{}, err
	}
	now := time.Now().UTC()

	var id string
	err = s.db.QueryRowContext(ctx, s.rebind(`
INSERT INTO video_recipes (id, title, description, ingredients, instructions, cook_time, servings, source_type, video_id, source_url, url_key, author_name, duration, thumbnail_url, created_at, updated_at, refresh_attempted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url_key) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    ingredients = EXCLUDED.ingredients,
    instructions = EXCLUDED.instructions,
    cook_time = EXCLUDED.cook_time,
    servings = EXCLUDED.servings,
    source_type = EXCLUDED.source_type,
    video_id = EXCLUDED.video_id,
    source_url = EXCLUDED.source_url,
    author_name = EXCLUDED.author_name,
    duration = EXCLUDED.duration,
    thumbnail_url = EXCLUDED.thumbnail_url,
    updated_at = EXCLUDED.updated_at,
    refresh_attempted_at = EXCLUDED.refresh_attempted_at
RETURNING id
`), uuid.NewString(), v.Title, v.Description, string(ingredients), string(instructions), nullInt(v.CookTime), nullInt(v.Servings),
		string(v.SourceType), v.VideoID, v.SourceURL, key, v.AuthorName, v.Duration, nullString(v.ThumbnailURL), now, now, now).Scan(&id)
	if err != nil {
		return VideoRecipe{}, fmt.Errorf("store: save video recipe: %w", err)
	}
	return s.GetVideoRecipe(ctx, id)
}

const videoColumns = `id, title, description, ingredients, instructions, cook_time, servings, source_type, video_id, source_url, author_name, duration, thumbnail_url, created_at, updated_at`

func (s *Store) GetVideoRecipe(ctx context.Context, id string) (VideoRecipe, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+videoColumns+` FROM video_recipes WHERE id = ?`), id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return VideoRecipe{}, fmt.Errorf("video recipe %s: %w", id, observability.ErrNotFound)
	}
	if err != nil {
		return VideoRecipe{}, fmt.Errorf("store: get video recipe: %w", err)
	}
	return v, nil
}

// ListVideoRecipes returns a page of video recipes, newest first, optionally
// limited to one platform, and the total matching.
func (s *Store) ListVideoRecipes(ctx context.Context, platform string, limit, offset int) ([]VideoRecipe, int, error) {
	limit = clampLimit(limit, 20, 100)
	offset = clampOffset(offset)

	clause := ""
	var args []any
	if platform != "" {
		clause = " WHERE source_type = ?"
		args = append(args, platform)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM video_recipes`+clause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count video recipes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+videoColumns+` FROM video_recipes`+clause+`
ORDER BY created_at DESC, id
LIMIT ? OFFSET ?`), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list video recipes: %w", err)
	}
	defer rows.Close()

	var out []VideoRecipe
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: scan video recipe: %w", err)
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func scanVideo(row rowScanner) (VideoRecipe, error) {
	var (
		v            VideoRecipe
		ingredients  string
		instructions string
		cookTime     sql.NullInt64
		servings     sql.NullInt64
		sourceType   string
		thumbnailURL sql.NullString
	)
	if err := row.Scan(
		&v.ID,
		&v.Title,
		&v.Description,
		&ingredients,
		&instructions,
		&cookTime,
		&servings,
		&sourceType,
		&v.VideoID,
		&v.SourceURL,
		&v.AuthorName,
		&v.Duration,
		&thumbnailURL,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return VideoRecipe{}, err
	}
	if err := json.Unmarshal([]byte(ingredients), &v.Ingredients); err != nil {
		return VideoRecipe{}, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(instructions), &v.Instructions); err != nil {
		return VideoRecipe{}, fmt.Errorf("decode instructions: %w", err)
	}
	v.CookTime = intPtr(cookTime)
	v.Servings = intPtr(servings)
	v.SourceType = recipe.SourceType(sourceType)
	v.ThumbnailURL = stringPtr(thumbnailURL)
	return v, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
