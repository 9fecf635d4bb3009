package store

import (
	"context"
	"database/sql"
	"errors"

	"cafe-pos/internal/models"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.sel(ctx, &categories, `
		SELECT id, name, color, sort_order FROM categories
		ORDER BY sort_order ASC, id ASC`)
	return categories, err
}

// GetCategory returns the category or (nil, nil) when it does not exist.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := s.get(ctx, &category, `SELECT id, name, color, sort_order FROM categories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// InsertCategory appends the category to the end of the display order.
func (s *Store) InsertCategory(ctx context.Context, name, color string) (*models.Category, error) {
	var category models.Category
	err := s.get(ctx, &category, `
		INSERT INTO categories (name, color, sort_order)
		VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM categories))
		RETURNING id, name, color, sort_order`, name, color)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, name, color string) error {
	return s.exec(ctx, `UPDATE categories SET name = $1, color = $2 WHERE id = $3`, name, color, id)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
}

func (s *Store) SetCategorySortOrder(ctx context.Context, id int64, sortOrder int) error {
	return s.exec(ctx, `UPDATE categories SET sort_order = $1 WHERE id = $2`, sortOrder, id)
}

// ListProducts returns products joined with their category, in display
// order. categoryID 0 lists the whole catalog.
func (s *Store) ListProducts(ctx context.Context, categoryID int64) ([]models.ProductView, error) {
	query := `
		SELECT p.id, p.name, p.price, p.category_id, p.color, p.sort_order,
		       COALESCE(c.name, '') AS category_name,
		       COALESCE(c.color, '') AS category_color
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id`
	args := []interface{}{}

	if categoryID > 0 {
		query += ` WHERE p.category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY p.sort_order ASC, p.id ASC`

	var products []models.ProductView
	err := s.sel(ctx, &products, query, args...)
	return products, err
}

// GetProduct returns the product or (nil, nil) when it does not exist.
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.get(ctx, &product, `
		SELECT id, name, price, category_id, color, sort_order
		FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// InsertProduct appends the product to the end of its category's order.
func (s *Store) InsertProduct(ctx context.Context, name string, price float64, categoryID int64, color string) (*models.Product, error) {
	var product models.Product
	err := s.get(ctx, &product, `
		INSERT INTO products (name, price, category_id, color, sort_order)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM products WHERE category_id = $3))
		RETURNING id, name, price, category_id, color, sort_order`,
		name, price, categoryID, color)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, name string, price float64, categoryID int64, color string) error {
	return s.exec(ctx, `
		UPDATE products SET name = $1, price = $2, category_id = $3, color = $4
		WHERE id = $5`, name, price, categoryID, color, id)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.exec(ctx, `DELETE FROM products WHERE id = $1`, id)
}

// SetProductSortOrder writes one product's ordinal. The category filter
// keeps a reorder scoped: ids from another category match zero rows.
func (s *Store) SetProductSortOrder(ctx context.Context, id, categoryID int64, sortOrder int) error {
	return s.exec(ctx, `
		UPDATE products SET sort_order = $1
		WHERE id = $2 AND category_id = $3`, sortOrder, id, categoryID)
}
