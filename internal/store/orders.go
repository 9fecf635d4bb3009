package store

import (
	"context"
	"database/sql"
	"errors"

	"cafe-pos/internal/models"
)

// GetOrderLine returns the line or (nil, nil) when it does not exist.
func (s *Store) GetOrderLine(ctx context.Context, id int64) (*models.OrderLine, error) {
	var line models.OrderLine
	err := s.get(ctx, &line, `SELECT * FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindOrderLine returns the live line for (table, product), or (nil, nil)
// when the table has no line for that product yet.
func (s *Store) FindOrderLine(ctx context.Context, tableID, productID int64) (*models.OrderLine, error) {
	var line models.OrderLine
	err := s.get(ctx, &line, `
		SELECT * FROM orders
		WHERE table_id = $1 AND product_id = $2
		ORDER BY id ASC LIMIT 1`, tableID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *Store) LinesForTable(ctx context.Context, tableID int64) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.sel(ctx, &lines, `
		SELECT * FROM orders WHERE table_id = $1 ORDER BY created_at ASC, id ASC`, tableID)
	return lines, err
}

// OrderViewForTable returns the table's lines joined with product details,
// newest first, for the table detail screen.
func (s *Store) OrderViewForTable(ctx context.Context, tableID int64) ([]models.OrderLineView, error) {
	var lines []models.OrderLineView
	err := s.sel(ctx, &lines, `
		SELECT o.id, o.product_id, p.name, p.price, o.quantity, o.total
		FROM orders o
		JOIN products p ON o.product_id = p.id
		WHERE o.table_id = $1
		ORDER BY o.created_at DESC, o.id DESC`, tableID)
	return lines, err
}

func (s *Store) InsertOrderLine(ctx context.Context, line *models.OrderLine) error {
	return s.get(ctx, line, `
		INSERT INTO orders (table_id, product_id, quantity, total)
		VALUES ($1, $2, $3, $4)
		RETURNING *`, line.TableID, line.ProductID, line.Quantity, line.Total)
}

func (s *Store) UpdateOrderLine(ctx context.Context, id int64, quantity int, total float64) error {
	return s.exec(ctx, `UPDATE orders SET quantity = $1, total = $2 WHERE id = $3`,
		quantity, total, id)
}

func (s *Store) DeleteOrderLine(ctx context.Context, id int64) error {
	return s.exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
}

func (s *Store) DeleteLinesForTable(ctx context.Context, tableID int64) error {
	return s.exec(ctx, `DELETE FROM orders WHERE table_id = $1`, tableID)
}
