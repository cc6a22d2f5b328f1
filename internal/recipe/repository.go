package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Repository is a database-backed store for imported recipes. The full
// recipe lives in a JSON data column; indexed columns exist only for
// lookup and ordering.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or updates a recipe.
func (r *Repository) Save(ctx context.Context, rec Recipe, sourceURL string) error {
	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	updatedAt := time.Now().UTC()
	if rec.UpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			log.Printf("failed to parse updated_at %q for recipe %s: %v, using current time", rec.UpdatedAt, rec.ID, err)
		} else {
			updatedAt = parsed
		}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO recipes (id, title, source_url, data, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   source_url = excluded.source_url,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		rec.ID, rec.Title, sourceURL, string(recipeJSON), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// Get retrieves a recipe by its ID. A missing recipe yields nil, not an
// error.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// List retrieves all stored recipes, newest first.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM recipes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}

		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			log.Printf("failed to unmarshal recipe JSON for ID %s: %v, skipping", id, err)
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

// Count returns the number of stored recipes.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}
