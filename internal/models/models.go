package models

import "time"

// Table statuses. Display strings (localized labels) belong to the clients;
// the core only ever sees this closed set.
const (
	TableStatusEmpty    = "empty"
	TableStatusOccupied = "occupied"
)

// Payment types
const (
	PaymentTypeCash = "Cash"
	PaymentTypeCard = "Card"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleWaiter = "waiter"
)

// Table represents a physical table. Status and Total are a cached
// projection of the order ledger and are only ever written by the
// order engine's recompute and settlement paths.
type Table struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Status    string    `db:"status" json:"status"`
	Total     float64   `db:"total" json:"total"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Category groups products and carries a manual display ordinal.
type Category struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Color     string `db:"color" json:"color"`
	SortOrder int    `db:"sort_order" json:"sortOrder"`
}

// Product is a catalog entry. SortOrder is scoped within the category.
type Product struct {
	ID         int64   `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Price      float64 `db:"price" json:"price"`
	CategoryID int64   `db:"category_id" json:"categoryId"`
	Color      string  `db:"color" json:"color"`
	SortOrder  int     `db:"sort_order" json:"sortOrder"`
}

// ProductView is a product joined with its category for listing.
type ProductView struct {
	Product
	CategoryName  string `db:"category_name" json:"categoryName"`
	CategoryColor string `db:"category_color" json:"categoryColor"`
}

// OrderLine is one live order row on a table. Total is quantity times
// the unit price in effect when the line was last written.
type OrderLine struct {
	ID        int64     `db:"id" json:"id"`
	TableID   int64     `db:"table_id" json:"tableId"`
	ProductID int64     `db:"product_id" json:"productId"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Total     float64   `db:"total" json:"total"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// OrderLineView is an order line joined with its product for display.
type OrderLineView struct {
	ID        int64   `db:"id" json:"id"`
	ProductID int64   `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Total     float64 `db:"total" json:"total"`
}

// Payment is an append-only settlement record. Amount is the table total
// snapshotted at settlement time, never re-derived.
type Payment struct {
	ID          int64     `db:"id" json:"id"`
	TableID     int64     `db:"table_id" json:"tableId"`
	Amount      float64   `db:"amount" json:"amount"`
	PaymentType string    `db:"payment_type" json:"paymentType"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// PaymentView is a payment joined with the table name for history listings.
type PaymentView struct {
	Payment
	TableName string `db:"table_name" json:"tableName"`
}

// DailyReport aggregates settled payments for one venue-local day.
type DailyReport struct {
	TotalTables   int     `db:"total_tables" json:"totalTables"`
	TotalPayments int     `db:"total_payments" json:"totalPayments"`
	TotalRevenue  float64 `db:"total_revenue" json:"totalRevenue"`
	CashRevenue   float64 `db:"cash_revenue" json:"cashRevenue"`
	CardRevenue   float64 `db:"card_revenue" json:"cardRevenue"`
}

// User is a terminal login account.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
	Role     string `db:"role" json:"role"`
}

// Setting is one key-value configuration row.
type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// Receipt is the printable view of a table's open orders.
type Receipt struct {
	VenueName string          `json:"venueName"`
	TableName string          `json:"tableName"`
	Orders    []OrderLineView `json:"orders"`
	Total     float64         `json:"total"`
	Date      time.Time       `json:"date"`
}
