package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
)

// Product is a catalog entry that lots are received against
type Product struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Barcode     *string `db:"barcode" json:"barcode,omitempty"`
	Description *string `db:"description" json:"description,omitempty"`
	ImageURL    *string `db:"image_url" json:"image_url,omitempty"`
	CategoryID  string  `db:"category_id" json:"category_id"`
	Unit        string  `db:"unit" json:"unit"`
	// NotificationThresholdDays is how many days before expiry the scan
	// starts flagging this product's lots.
	NotificationThresholdDays int       `db:"notification_threshold_days" json:"notification_threshold_days"`
	CreatedAt                 time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time `db:"updated_at" json:"updated_at"`
}

// ProductDetail is a product joined with its category name
type ProductDetail struct {
	Product
	CategoryName string `db:"category_name" json:"category_name"`
}

// ProductFilter narrows product listings
type ProductFilter struct {
	CategoryID string
	Search     string
}

// ProductRepository handles product persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *Product) error {
	if product.Unit == "" {
		product.Unit = "piece"
	}
	if product.NotificationThresholdDays < 1 {
		product.NotificationThresholdDays = 7
	}

	query := `
		INSERT INTO products (name, barcode, description, image_url, category_id, unit, notification_threshold_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		product.Name, product.Barcode, product.Description, product.ImageURL,
		product.CategoryID, product.Unit, product.NotificationThresholdDays).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// Get gets a product with its category name
func (r *ProductRepository) Get(ctx context.Context, id string) (*ProductDetail, error) {
	var product ProductDetail
	query := `
		SELECT p.*, c.name AS category_name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("product")
		}
		return nil, err
	}
	return &product, nil
}

// GetByBarcode looks a product up by its barcode
func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*ProductDetail, error) {
	var product ProductDetail
	query := `
		SELECT p.*, c.name AS category_name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.barcode = $1
	`
	if err := r.db.GetContext(ctx, &product, query, barcode); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("product")
		}
		return nil, err
	}
	return &product, nil
}

// List lists products matching the filter
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]*ProductDetail, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT p.*, c.name AS category_name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE %s
		ORDER BY p.name
	`, strings.Join(conditions, " AND "))

	var products []*ProductDetail
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}
	return products, nil
}

// Update updates a product
func (r *ProductRepository) Update(ctx context.Context, product *Product) error {
	query := `
		UPDATE products
		SET name = $2, barcode = $3, description = $4, image_url = $5,
		    category_id = $6, unit = $7, notification_threshold_days = $8,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Barcode, product.Description, product.ImageURL,
		product.CategoryID, product.Unit, product.NotificationThresholdDays)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}
	return nil
}

// Delete removes a product. Fails while lots still reference it.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}
	return nil
}
