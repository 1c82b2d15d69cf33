// Package sqlitestore provides a SQLite-backed recipe store for deployed
// instances, where the content pack is a local artifact next to the binary.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/open-rails/recipemcp/recipe"
	"github.com/open-rails/recipemcp/storage/sqlite/migrations"
)

// Store persists recipe content in SQLite. WAL mode supports the server's
// many-concurrent-readers profile; writes happen only during pack loads.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite recipe store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// List implements recipe.Store.
func (s *Store) List(ctx context.Context) ([]recipe.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, title, description, tier, platform, complexity FROM recipes ORDER BY id ASC`)
	if err != nil {
		return nil, recipe.Transient(fmt.Errorf("list recipes: %w", err))
	}
	defer rows.Close()

	out := []recipe.Summary{}
	for rows.Next() {
		var sum recipe.Summary
		var tier string
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Description, &tier, &sum.Platform, &sum.Complexity); err != nil {
			return nil, recipe.Transient(fmt.Errorf("scan recipe summary: %w", err))
		}
		sum.Tier = recipe.Tier(tier)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, recipe.Transient(fmt.Errorf("list recipes: %w", err))
	}
	return out, nil
}

// Get implements recipe.Store. The full document including body is returned
// regardless of tier; entitlement is the service layer's concern.
func (s *Store) Get(ctx context.Context, id string) (recipe.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return recipe.Recipe{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT id, title, description, tier, platform, complexity, requires, pairs_with, body FROM recipes WHERE id = ? LIMIT 1`, id)

	var r recipe.Recipe
	var tier, requires, pairsWith, body string
	err := row.Scan(&r.ID, &r.Title, &r.Description, &tier, &r.Platform, &r.Complexity, &requires, &pairsWith, &body)
	if err == sql.ErrNoRows {
		return recipe.Recipe{}, fmt.Errorf("recipe %q: %w", id, recipe.ErrNotFound)
	}
	if err != nil {
		return recipe.Recipe{}, recipe.Transient(fmt.Errorf("get recipe %s: %w", id, err))
	}
	r.Tier = recipe.Tier(tier)
	if err := json.Unmarshal([]byte(requires), &r.Requires); err != nil {
		return recipe.Recipe{}, fmt.Errorf("decode requires for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(pairsWith), &r.PairsWith); err != nil {
		return recipe.Recipe{}, fmt.Errorf("decode pairs_with for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(body), &r.Body); err != nil {
		return recipe.Recipe{}, fmt.Errorf("decode body for %s: %w", id, err)
	}
	return r, nil
}

// Search implements recipe.Store. Content packs are small, so search loads
// the pack and ranks in memory with the shared scoring rule; every backend
// returns identical ordering that way.
func (s *Store) Search(ctx context.Context, query string) ([]recipe.Summary, error) {
	recipes, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return recipe.Rank(recipes, query), nil
}

// Replace swaps the store content in one transaction.
func (s *Store) Replace(ctx context.Context, recipes []recipe.Recipe) error {
	seen := make(map[string]bool, len(recipes))
	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate recipe id %q", r.ID)
		}
		seen[r.ID] = true
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return recipe.Transient(fmt.Errorf("begin replace: %w", err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
		_ = tx.Rollback()
		return recipe.Transient(fmt.Errorf("clear recipes: %w", err))
	}
	now := time.Now().UTC().UnixMilli()
	for _, r := range recipes {
		requires, err := json.Marshal(orEmpty(r.Requires))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode requires for %s: %w", r.ID, err)
		}
		pairsWith, err := json.Marshal(orEmpty(r.PairsWith))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode pairs_with for %s: %w", r.ID, err)
		}
		body, err := json.Marshal(r.Body)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode body for %s: %w", r.ID, err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO recipes (id, title, description, tier, platform, complexity, requires, pairs_with, body, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			r.ID, r.Title, r.Description, string(r.Tier), r.Platform, r.Complexity, string(requires), string(pairsWith), string(body), now)
		if err != nil {
			_ = tx.Rollback()
			return recipe.Transient(fmt.Errorf("insert recipe %s: %w", r.ID, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return recipe.Transient(fmt.Errorf("commit replace: %w", err))
	}
	return nil
}

func (s *Store) all(ctx context.Context) ([]recipe.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, title, description, tier, platform, complexity, requires, pairs_with, body FROM recipes ORDER BY id ASC`)
	if err != nil {
		return nil, recipe.Transient(fmt.Errorf("load recipes: %w", err))
	}
	defer rows.Close()

	var out []recipe.Recipe
	for rows.Next() {
		var r recipe.Recipe
		var tier, requires, pairsWith, body string
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &tier, &r.Platform, &r.Complexity, &requires, &pairsWith, &body); err != nil {
			return nil, recipe.Transient(fmt.Errorf("scan recipe: %w", err))
		}
		r.Tier = recipe.Tier(tier)
		if err := json.Unmarshal([]byte(requires), &r.Requires); err != nil {
			return nil, fmt.Errorf("decode requires for %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(pairsWith), &r.PairsWith); err != nil {
			return nil, fmt.Errorf("decode pairs_with for %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(body), &r.Body); err != nil {
			return nil, fmt.Errorf("decode body for %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, recipe.Transient(fmt.Errorf("load recipes: %w", err))
	}
	return out, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
