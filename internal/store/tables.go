package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sort"
	"strconv"

	"cafe-pos/internal/models"
)

var tableNumRe = regexp.MustCompile(`\d+`)

// ListTables returns all tables in display order: tables whose names embed
// a numeral sort numerically ("Table 2" before "Table 10"), the rest sort
// by name after them.
func (s *Store) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := s.sel(ctx, &tables, `SELECT * FROM tables`); err != nil {
		return nil, err
	}

	sort.SliceStable(tables, func(i, j int) bool {
		return displayBefore(tables[i].Name, tables[j].Name)
	})

	return tables, nil
}

func displayBefore(a, b string) bool {
	na, oka := embeddedNumber(a)
	nb, okb := embeddedNumber(b)
	switch {
	case oka && okb:
		if na != nb {
			return na < nb
		}
		return a < b
	case oka:
		return true
	case okb:
		return false
	default:
		return a < b
	}
}

func embeddedNumber(name string) (int, bool) {
	m := tableNumRe.FindString(name)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetTable returns the table or (nil, nil) when it does not exist.
func (s *Store) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	var table models.Table
	err := s.get(ctx, &table, `SELECT * FROM tables WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *Store) InsertTable(ctx context.Context, name string) (*models.Table, error) {
	var table models.Table
	err := s.get(ctx, &table, `
		INSERT INTO tables (name) VALUES ($1)
		RETURNING *`, name)
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *Store) RenameTable(ctx context.Context, id int64, name string) error {
	return s.exec(ctx, `UPDATE tables SET name = $1 WHERE id = $2`, name, id)
}

func (s *Store) DeleteTable(ctx context.Context, id int64) error {
	return s.exec(ctx, `DELETE FROM tables WHERE id = $1`, id)
}

// SetTableState writes the cached projection fields. Only the order
// engine's recompute and settlement paths may call this.
func (s *Store) SetTableState(ctx context.Context, id int64, status string, total float64) error {
	return s.exec(ctx, `UPDATE tables SET status = $1, total = $2 WHERE id = $3`, status, total, id)
}
