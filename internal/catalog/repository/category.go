package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
)

// Category groups products
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CategoryWithCount is a category with its product count
type CategoryWithCount struct {
	Category
	ProductCount int `db:"product_count" json:"product_count"`
}

// CategoryRepository handles category persistence
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create creates a new category. Names are unique.
func (r *CategoryRepository) Create(ctx context.Context, category *Category) error {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, category.Name, category.Description).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// List lists all categories with their product counts
func (r *CategoryRepository) List(ctx context.Context) ([]*CategoryWithCount, error) {
	var categories []*CategoryWithCount
	query := `
		SELECT c.id, c.name, c.description, c.created_at, COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

// Get gets a category by ID
func (r *CategoryRepository) Get(ctx context.Context, id string) (*Category, error) {
	var category Category
	query := `SELECT * FROM categories WHERE id = $1`
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("category")
		}
		return nil, err
	}
	return &category, nil
}

// Update renames a category
func (r *CategoryRepository) Update(ctx context.Context, category *Category) error {
	query := `UPDATE categories SET name = $2, description = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Description)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("category")
	}
	return nil
}

// Delete removes a category. Fails while products still reference it.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("category")
	}
	return nil
}
