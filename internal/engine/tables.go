package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cafe-pos/internal/models"
)

// Table registry admin operations. These live on the engine because it
// owns every mutation of table state.

func (e *Engine) ListTables(ctx context.Context) ([]models.Table, error) {
	return e.store.ListTables(ctx)
}

func (e *Engine) CreateTable(ctx context.Context, name string) (*models.Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("table name is required: %w", models.ErrInvalidArgument)
	}

	table, err := e.store.InsertTable(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	e.bus.Publish(ctx, models.EventTableCreated, map[string]any{
		"id":     table.ID,
		"name":   table.Name,
		"status": table.Status,
		"total":  table.Total,
	})
	return table, nil
}

// RenameTable updates the display name. Status and total are a projection
// of the ledger and are never accepted from clients.
func (e *Engine) RenameTable(ctx context.Context, id int64, name string) (*models.Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("table name is required: %w", models.ErrInvalidArgument)
	}

	table, err := e.store.GetTable(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	if table == nil {
		return nil, fmt.Errorf("table %d: %w", id, models.ErrNotFound)
	}

	if err := e.store.RenameTable(ctx, id, name); err != nil {
		return nil, fmt.Errorf("failed to rename table: %w", err)
	}
	table.Name = name

	e.bus.Publish(ctx, models.EventTableUpdated, map[string]any{
		"id":     table.ID,
		"name":   table.Name,
		"status": table.Status,
		"total":  table.Total,
	})
	return table, nil
}

// DeleteTable removes a table. Deletion is rejected while the table has
// live orders, so the ledger can never reference a table that is gone.
func (e *Engine) DeleteTable(ctx context.Context, id int64) error {
	table, err := e.store.GetTable(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load table: %w", err)
	}
	if table == nil {
		return fmt.Errorf("table %d: %w", id, models.ErrNotFound)
	}
	if table.Status == models.TableStatusOccupied {
		return fmt.Errorf("table %d has open orders: %w", id, models.ErrInvalidArgument)
	}

	if err := e.store.DeleteTable(ctx, id); err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}

	e.bus.Publish(ctx, models.EventTableDeleted, map[string]any{"id": id})
	return nil
}

// RequestPayment signals the cashier terminals that a table wants to pay.
// It mutates nothing; it only fires a notification.
func (e *Engine) RequestPayment(ctx context.Context, tableID int64) error {
	table, err := e.store.GetTable(ctx, tableID)
	if err != nil {
		return fmt.Errorf("failed to load table: %w", err)
	}
	if table == nil {
		return fmt.Errorf("table %d: %w", tableID, models.ErrNotFound)
	}

	e.bus.Publish(ctx, models.EventPaymentRequested, map[string]any{
		"tableId":   table.ID,
		"tableName": table.Name,
		"total":     table.Total,
	})
	return nil
}

// Receipt builds the printable view of a table's open orders, oldest line
// first. Printer hardware is someone else's problem.
func (e *Engine) Receipt(ctx context.Context, tableID int64, venueName string) (*models.Receipt, error) {
	table, err := e.store.GetTable(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	if table == nil {
		return nil, fmt.Errorf("table %d: %w", tableID, models.ErrNotFound)
	}

	lines, err := e.store.OrderViewForTable(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	// OrderViewForTable is newest-first for the table screen; receipts
	// print in the order the items were added.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	if name, err := e.store.GetSetting(ctx, "venueName"); err == nil && name != "" {
		venueName = name
	}

	return &models.Receipt{
		VenueName: venueName,
		TableName: table.Name,
		Orders:    lines,
		Total:     table.Total,
		Date:      time.Now().UTC(),
	}, nil
}
