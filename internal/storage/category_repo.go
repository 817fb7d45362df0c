package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_category_store.go -package=mocks discourse-ai/internal/storage CategoryStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CategoryStore defines the interface for category operations.
type CategoryStore interface {
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Upsert(ctx context.Context, cat Category) error
}

// CategoryRepo provides methods for category database operations.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo creates a new CategoryRepo.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// GetByID retrieves a category by its id.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*Category, error) {
	var cat Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.Name, &cat.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cats []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// Upsert inserts or updates a category.
func (r *CategoryRepo) Upsert(ctx context.Context, cat Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description`,
		cat.ID, cat.Name, cat.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}
