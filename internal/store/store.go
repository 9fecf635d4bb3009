package store

import (
	"context"
	"fmt"
	"time"

	"cafe-pos/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// API is the persistence surface the services consume. It is satisfied by
// *Store and by the transaction-scoped *Store handed to WithTx callbacks,
// so multi-step operations compose the same methods inside one transaction.
type API interface {
	// tables
	ListTables(ctx context.Context) ([]models.Table, error)
	GetTable(ctx context.Context, id int64) (*models.Table, error)
	InsertTable(ctx context.Context, name string) (*models.Table, error)
	RenameTable(ctx context.Context, id int64, name string) error
	DeleteTable(ctx context.Context, id int64) error
	SetTableState(ctx context.Context, id int64, status string, total float64) error

	// catalog
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	InsertCategory(ctx context.Context, name, color string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, name, color string) error
	DeleteCategory(ctx context.Context, id int64) error
	SetCategorySortOrder(ctx context.Context, id int64, sortOrder int) error
	ListProducts(ctx context.Context, categoryID int64) ([]models.ProductView, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	InsertProduct(ctx context.Context, name string, price float64, categoryID int64, color string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, name string, price float64, categoryID int64, color string) error
	DeleteProduct(ctx context.Context, id int64) error
	SetProductSortOrder(ctx context.Context, id, categoryID int64, sortOrder int) error

	// order ledger
	GetOrderLine(ctx context.Context, id int64) (*models.OrderLine, error)
	FindOrderLine(ctx context.Context, tableID, productID int64) (*models.OrderLine, error)
	LinesForTable(ctx context.Context, tableID int64) ([]models.OrderLine, error)
	OrderViewForTable(ctx context.Context, tableID int64) ([]models.OrderLineView, error)
	InsertOrderLine(ctx context.Context, line *models.OrderLine) error
	UpdateOrderLine(ctx context.Context, id int64, quantity int, total float64) error
	DeleteOrderLine(ctx context.Context, id int64) error
	DeleteLinesForTable(ctx context.Context, tableID int64) error

	// payments and reporting
	InsertPayment(ctx context.Context, payment *models.Payment) error
	PaymentsByDate(ctx context.Context, date string, utcOffsetHours int) ([]models.PaymentView, error)
	DailyReport(ctx context.Context, date string, utcOffsetHours int) (*models.DailyReport, error)

	// settings and users
	ListSettings(ctx context.Context) (map[string]string, error)
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
	GetUserByCredentials(ctx context.Context, username, password string) (*models.User, error)

	// WithTx runs fn against a transaction-scoped API, committing on nil
	// and rolling back on error. Nested calls join the enclosing transaction.
	WithTx(ctx context.Context, fn func(tx API) error) error
}

// Store is the Postgres-backed implementation of API.
type Store struct {
	db *sqlx.DB       // nil for transaction-scoped stores
	q  sqlx.ExtContext // *sqlx.DB or *sqlx.Tx
}

var _ API = (*Store)(nil)

// New connects to Postgres and configures the pool.
func New(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, q: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WithTx runs fn within a single transaction. A failure anywhere rolls the
// whole unit back; this is what keeps transfer and settlement all-or-nothing.
func (s *Store) WithTx(ctx context.Context, fn func(tx API) error) error {
	if s.db == nil {
		// Already transaction-scoped; join the enclosing transaction.
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, s.q, dest, query, args...)
}

func (s *Store) sel(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, s.q, dest, query, args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := s.q.ExecContext(ctx, query, args...)
	return err
}
