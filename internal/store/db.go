package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/baxromumarov/recipe-hunter/internal/urlutil"
)

const sqlitePrefix = "sqlite:"

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

// Store persists imported recipes in PostgreSQL, or in SQLite when the
// connection string starts with "sqlite:" (e.g. "sqlite:recipes.db",
// "sqlite::memory:").
type Store struct {
	db      *sql.DB
	dialect dialect
}

func NewStore(connStr string) (*Store, error) {
	driver, dsn, d := "postgres", connStr, dialectPostgres
	if strings.HasPrefix(connStr, sqlitePrefix) {
		driver, d = "sqlite", dialectSQLite
		dsn = strings.TrimPrefix(connStr, sqlitePrefix) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if d == dialectSQLite {
		// one connection keeps ":memory:" databases alive and serializes writers
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db, dialect: d}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunMigrations creates the tables and indexes if they do not exist.
func (s *Store) RunMigrations(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmts := postgresSchema
	if s.dialect == dialectSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}
	for _, c := range addedColumns {
		if err := s.ensureColumn(ctx, c); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", c.table, c.column, err)
		}
	}
	return nil
}

// ensureColumn adds a column introduced after the table was first created.
// SQLite has no ADD COLUMN IF NOT EXISTS, so it checks table_info first.
func (s *Store) ensureColumn(ctx context.Context, c addedColumn) error {
	if s.dialect == dialectPostgres {
		_, err := s.db.ExecContext(ctx, `ALTER TABLE `+c.table+` ADD COLUMN IF NOT EXISTS `+c.column+` `+c.postgresType)
		return err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, c.table, c.column).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `ALTER TABLE `+c.table+` ADD COLUMN `+c.column+` `+c.sqliteType)
	return err
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rebind rewrites "?" placeholders to "$n" for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// StaleSourceURLs returns source URLs of stored recipes, website and video,
// whose last import attempt is older than before. Oldest attempt first, at
// most limit of them.
func (s *Store) StaleSourceURLs(ctx context.Context, before time.Time, limit int) ([]string, error) {
	limit = clampLimit(limit, 50, 500)

	type staleRow struct {
		url       string
		attempted time.Time
	}
	var stale []staleRow
	for _, table := range refreshTables {
		rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT source_url, updated_at, refresh_attempted_at FROM `+table+`
ORDER BY COALESCE(refresh_attempted_at, updated_at) ASC
LIMIT ?`), limit)
		if err != nil {
			return nil, fmt.Errorf("store: list stale %s: %w", table, err)
		}
		for rows.Next() {
			var (
				r         staleRow
				attempted sql.NullTime
			)
			if err := rows.Scan(&r.url, &r.attempted, &attempted); err != nil {
				rows.Close()
				return nil, fmt.Errorf("store: scan stale %s: %w", table, err)
			}
			if attempted.Valid {
				r.attempted = attempted.Time
			}
			if r.attempted.Before(before) {
				stale = append(stale, r)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("store: list stale %s: %w", table, err)
		}
	}

	sort.SliceStable(stale, func(i, j int) bool { return stale[i].attempted.Before(stale[j].attempted) })
	if len(stale) > limit {
		stale = stale[:limit]
	}
	out := make([]string, 0, len(stale))
	for _, r := range stale {
		out = append(out, r.url)
	}
	return out, nil
}

// MarkRefreshAttempted stamps the given source URLs as attempted at the given
// time, whatever the outcome of the import turns out to be. Unknown URLs are
// ignored.
func (s *Store) MarkRefreshAttempted(ctx context.Context, sourceURLs []string, at time.Time) error {
	at = at.UTC()
	for _, u := range sourceURLs {
		key, _, err := urlutil.Normalize(u)
		if err != nil {
			continue
		}
		for _, table := range refreshTables {
			if _, err := s.db.ExecContext(ctx, s.rebind(`UPDATE `+table+` SET refresh_attempted_at = ? WHERE url_key = ?`), at, key); err != nil {
				return fmt.Errorf("store: mark refresh %s: %w", table, err)
			}
		}
	}
	return nil
}
