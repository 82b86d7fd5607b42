package store

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS external_recipes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    instructions TEXT NOT NULL DEFAULT '',
    cook_time INTEGER,
    servings INTEGER,
    image_url TEXT,
    source_site TEXT NOT NULL,
    source_url TEXT NOT NULL,
    url_key TEXT NOT NULL UNIQUE,
    source_recipe_id TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    refresh_attempted_at TIMESTAMPTZ
)`,
	`CREATE TABLE IF NOT EXISTS external_ingredients (
    recipe_id TEXT NOT NULL REFERENCES external_recipes(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    quantity DOUBLE PRECISION,
    unit TEXT,
    PRIMARY KEY (recipe_id, position)
)`,
	`CREATE TABLE IF NOT EXISTS video_recipes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    ingredients TEXT NOT NULL DEFAULT '[]',
    instructions TEXT NOT NULL DEFAULT '[]',
    cook_time INTEGER,
    servings INTEGER,
    source_type TEXT NOT NULL,
    video_id TEXT NOT NULL,
    source_url TEXT NOT NULL,
    url_key TEXT NOT NULL UNIQUE,
    author_name TEXT NOT NULL DEFAULT '',
    duration INTEGER NOT NULL DEFAULT 0,
    thumbnail_url TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    refresh_attempted_at TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_external_recipes_site ON external_recipes (source_site)`,
	`CREATE INDEX IF NOT EXISTS idx_video_recipes_type ON video_recipes (source_type)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS external_recipes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    instructions TEXT NOT NULL DEFAULT '',
    cook_time INTEGER,
    servings INTEGER,
    image_url TEXT,
    source_site TEXT NOT NULL,
    source_url TEXT NOT NULL,
    url_key TEXT NOT NULL UNIQUE,
    source_recipe_id TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    refresh_attempted_at TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS external_ingredients (
    recipe_id TEXT NOT NULL REFERENCES external_recipes(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    quantity REAL,
    unit TEXT,
    PRIMARY KEY (recipe_id, position)
)`,
	`CREATE TABLE IF NOT EXISTS video_recipes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    ingredients TEXT NOT NULL DEFAULT '[]',
    instructions TEXT NOT NULL DEFAULT '[]',
    cook_time INTEGER,
    servings INTEGER,
    source_type TEXT NOT NULL,
    video_id TEXT NOT NULL,
    source_url TEXT NOT NULL,
    url_key TEXT NOT NULL UNIQUE,
    author_name TEXT NOT NULL DEFAULT '',
    duration INTEGER NOT NULL DEFAULT 0,
    thumbnail_url TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    refresh_attempted_at TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_external_recipes_site ON external_recipes (source_site)`,
	`CREATE INDEX IF NOT EXISTS idx_video_recipes_type ON video_recipes (source_type)`,
}

// refreshTables hold recipes the refresh scheduler re-imports.
var refreshTables = []string{"external_recipes", "video_recipes"}

type addedColumn struct {
	table        string
	column       string
	postgresType string
	sqliteType   string
}

// addedColumns upgrade databases created before the column existed.
var addedColumns = []addedColumn{
	{"external_recipes", "refresh_attempted_at", "TIMESTAMPTZ", "TIMESTAMP"},
	{"video_recipes", "refresh_attempted_at", "TIMESTAMPTZ", "TIMESTAMP"},
}
