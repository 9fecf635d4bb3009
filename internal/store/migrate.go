package store

import (
	"context"
	"fmt"
)

// Schema statements are all idempotent so startup can run them every time.
// The ADD COLUMN statements cover databases created before color and
// sort_order existed.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tables (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'empty',
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#3B82F6',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		category_id BIGINT NOT NULL REFERENCES categories(id),
		color TEXT NOT NULL DEFAULT '#FFFFFF',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		table_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL,
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		table_id BIGINT NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		payment_type TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'waiter'
	)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	)`,

	`ALTER TABLE categories ADD COLUMN IF NOT EXISTS sort_order INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS color TEXT NOT NULL DEFAULT '#FFFFFF'`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS sort_order INTEGER NOT NULL DEFAULT 0`,

	`INSERT INTO settings (key, value) VALUES ('printerIP', '') ON CONFLICT (key) DO NOTHING`,
	`INSERT INTO settings (key, value) VALUES ('taxRate', '0') ON CONFLICT (key) DO NOTHING`,
	`INSERT INTO settings (key, value) VALUES ('venueName', 'Cafe POS') ON CONFLICT (key) DO NOTHING`,

	`INSERT INTO users (username, password, role) VALUES ('admin', 'admin', 'admin') ON CONFLICT (username) DO NOTHING`,
	`INSERT INTO users (username, password, role) VALUES ('waiter', 'waiter', 'waiter') ON CONFLICT (username) DO NOTHING`,
}

// Migrate creates the schema and applies additive column migrations.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if err := s.exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
