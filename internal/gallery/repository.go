// Package gallery manages gallery media records and keeps object storage in
// step with them.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/visualink/studio/internal/apperr"
	"github.com/visualink/studio/internal/db"
)

// Item is a published gallery entry.
type Item struct {
	ID        int64     `json:"id"         example:"5"`
	URL       string    `json:"url"        example:"https://media.example.com/1700000000000-clip.mp4"`
	Title     string    `json:"title"      example:"Wedding Reception"`
	Category  string    `json:"category"   example:"Wedding"`
	CreatedAt time.Time `json:"created_at" example:"2026-02-27T14:48:34Z"`
}

// ErrNotFound is returned when a gallery item does not exist.
var ErrNotFound = fmt.Errorf("gallery item %w", apperr.ErrNotFound)

const itemColumns = `id, url, title, category, created_at`

// Repository handles all gallery database operations.
type Repository struct {
	db db.Querier
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

// List returns all items, newest first.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+` FROM gallery ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.URL, &it.Title, &it.Category, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gallery item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return items, nil
}

// Create inserts a new item and returns the stored record.
func (r *Repository) Create(ctx context.Context, url, title, category string) (*Item, error) {
	it := &Item{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO gallery (url, title, category)
		 VALUES ($1, $2, $3)
		 RETURNING `+itemColumns,
		url, title, category,
	).Scan(&it.ID, &it.URL, &it.Title, &it.Category, &it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create gallery item: %w", err)
	}
	return it, nil
}

// GetByID fetches an item by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Item, error) {
	it := &Item{}
	err := r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM gallery WHERE id = $1`,
		id,
	).Scan(&it.ID, &it.URL, &it.Title, &it.Category, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get gallery item: %w", err)
	}
	return it, nil
}

// Update applies the non-nil fields to the item. Nil means "leave unchanged".
func (r *Repository) Update(ctx context.Context, id int64, url, title, category *string) (*Item, error) {
	it := &Item{}
	err := r.db.QueryRow(ctx,
		`UPDATE gallery
		 SET url      = COALESCE($2, url),
		     title    = COALESCE($3, title),
		     category = COALESCE($4, category)
		 WHERE id = $1
		 RETURNING `+itemColumns,
		id, nullable(url), nullable(title), nullable(category),
	).Scan(&it.ID, &it.URL, &it.Title, &it.Category, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update gallery item: %w", err)
	}
	return it, nil
}

// Delete removes the item and returns the row as it was. A missing id
// yields ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id int64) (*Item, error) {
	it := &Item{}
	err := r.db.QueryRow(ctx,
		`DELETE FROM gallery WHERE id = $1 RETURNING `+itemColumns,
		id,
	).Scan(&it.ID, &it.URL, &it.Title, &it.Category, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete gallery item: %w", err)
	}
	return it, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
