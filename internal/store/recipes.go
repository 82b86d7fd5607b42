package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baxromumarov/recipe-hunter/internal/observability"
	"github.com/baxromumarov/recipe-hunter/internal/recipe"
	"github.com/baxromumarov/recipe-hunter/internal/urlutil"
)

// ExternalRecipe is a website recipe with structured ingredient rows.
type ExternalRecipe struct {
	ID string `json:"id"`
	recipe.ScrapedRecipe
	SourceSite     string    `json:"sourceSite"`
	SourceURL      string    `json:"sourceUrl"`
	SourceRecipeID string    `json:"sourceRecipeId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ExternalRecipeFilter narrows ListExternalRecipes. Query matches titles
// case-insensitively.
type ExternalRecipeFilter struct {
	Query      string
	SourceSite string
	Limit      int
	Offset     int
}

// SaveExternalRecipe inserts the result, or replaces the stored recipe with
// the same normalized source URL. Ingredients are rewritten in order.
func (s *Store) SaveExternalRecipe(ctx context.Context, res recipe.ScraperResult) (ExternalRecipe, error) {
	key, _, err := urlutil.Normalize(res.SourceURL)
	if err != nil {
		return ExternalRecipe{}, &recipe.InvalidInputError{Input: res.SourceURL, Err: err}
	}
	now := time.Now().UTC()
	r := res.Recipe

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExternalRecipe{}, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, s.rebind(`
INSERT INTO external_recipes (id, title, description, instructions, cook_time, servings, image_url, source_site, source_url, url_key, source_recipe_id, created_at, updated_at, refresh_attempted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url_key) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    instructions = EXCLUDED.instructions,
    cook_time = EXCLUDED.cook_time,
    servings = EXCLUDED.servings,
    image_url = EXCLUDED.image_url,
    source_site = EXCLUDED.source_site,
    source_url = EXCLUDED.source_url,
    source_recipe_id = EXCLUDED.source_recipe_id,
    updated_at = EXCLUDED.updated_at,
    refresh_attempted_at = EXCLUDED.refresh_attempted_at
RETURNING id
`), uuid.NewString(), r.Title, nullString(r.Description), r.Instructions, nullInt(r.CookTime), nullInt(r.Servings),
		nullString(r.ImageURL), res.SourceSite, res.SourceURL, key, res.SourceRecipeID, now, now, now).Scan(&id)
	if err != nil {
		return ExternalRecipe{}, fmt.Errorf("store: save recipe: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM external_ingredients WHERE recipe_id = ?`), id); err != nil {
		return ExternalRecipe{}, fmt.Errorf("store: clear ingredients: %w", err)
	}
	for i, ing := range r.Ingredients {
		if _, err := tx.ExecContext(ctx, s.rebind(`
INSERT INTO external_ingredients (recipe_id, position, name, quantity, unit)
VALUES (?, ?, ?, ?, ?)
`), id, i, ing.Name, nullFloat(ing.Quantity), nullString(ing.Unit)); err != nil {
			return ExternalRecipe{}, fmt.Errorf("store: save ingredient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ExternalRecipe{}, fmt.Errorf("store: commit: %w", err)
	}
	return s.GetExternalRecipe(ctx, id)
}

const externalColumns = `id, title, description, instructions, cook_time, servings, image_url, source_site, source_url, COALESCE(source_recipe_id, ''), created_at, updated_at`

func (s *Store) GetExternalRecipe(ctx context.Context, id string) (ExternalRecipe, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+externalColumns+` FROM external_recipes WHERE id = ?`), id)
	rec, err := scanExternal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ExternalRecipe{}, fmt.Errorf("recipe %s: %w", id, observability.ErrNotFound)
	}
	if err != nil {
		return ExternalRecipe{}, fmt.Errorf("store: get recipe: %w", err)
	}
	if rec.Ingredients, err = s.ingredients(ctx, rec.ID); err != nil {
		return ExternalRecipe{}, err
	}
	return rec, nil
}

// ListExternalRecipes returns a page of recipes, newest first, and the total
// number matching the filter.
func (s *Store) ListExternalRecipes(ctx context.Context, f ExternalRecipeFilter) ([]ExternalRecipe, int, error) {
	limit := clampLimit(f.Limit, 20, 100)
	offset := clampOffset(f.Offset)

	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if f.SourceSite != "" {
		where = append(where, "source_site = ?")
		args = append(args, f.SourceSite)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM external_recipes`+clause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count recipes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+externalColumns+` FROM external_recipes`+clause+`
ORDER BY created_at DESC, id
LIMIT ? OFFSET ?`), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list recipes: %w", err)
	}
	var recipes []ExternalRecipe
	for rows.Next() {
		rec, err := scanExternal(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("store: scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, fmt.Errorf("store: list recipes: %w", err)
	}
	rows.Close()

	// sqlite runs on one connection, so ingredients load after rows are closed
	for i := range recipes {
		if recipes[i].Ingredients, err = s.ingredients(ctx, recipes[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return recipes, total, nil
}

func (s *Store) ingredients(ctx context.Context, recipeID string) ([]recipe.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT name, quantity, unit
FROM external_ingredients
WHERE recipe_id = ?
ORDER BY position
`), recipeID)
	if err != nil {
		return nil, fmt.Errorf("store: list ingredients: %w", err)
	}
	defer rows.Close()

	out := []recipe.Ingredient{}
	for rows.Next() {
		var (
			ing      recipe.Ingredient
			quantity sql.NullFloat64
			unit     sql.NullString
		)
		if err := rows.Scan(&ing.Name, &quantity, &unit); err != nil {
			return nil, fmt.Errorf("store: scan ingredient: %w", err)
		}
		ing.Quantity = floatPtr(quantity)
		ing.Unit = stringPtr(unit)
		out = append(out, ing)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExternal(row rowScanner) (ExternalRecipe, error) {
	var (
		rec         ExternalRecipe
		description sql.NullString
		cookTime    sql.NullInt64
		servings    sql.NullInt64
		imageURL    sql.NullString
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Title,
		&description,
		&rec.Instructions,
		&cookTime,
		&servings,
		&imageURL,
		&rec.SourceSite,
		&rec.SourceURL,
		&rec.SourceRecipeID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return ExternalRecipe{}, err
	}
	rec.Description = stringPtr(description)
	rec.CookTime = intPtr(cookTime)
	rec.Servings = intPtr(servings)
	rec.ImageURL = stringPtr(imageURL)
	return rec, nil
}
