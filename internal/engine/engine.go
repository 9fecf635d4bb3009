// Package engine keeps a table's displayed total and occupancy status
// consistent with its underlying order lines. Table.status and Table.total
// are a cached projection of the order ledger: every mutation here ends in
// a recompute, and nothing else in the codebase writes those fields.
package engine

import (
	"context"
	"fmt"

	"cafe-pos/internal/bus"
	"cafe-pos/internal/models"
	"cafe-pos/internal/store"
	"cafe-pos/internal/util"

	"go.uber.org/zap"
)

// Engine is the only correct set of primitives for mutating order lines.
type Engine struct {
	store  store.API
	bus    bus.Bus
	logger *zap.Logger
}

func New(st store.API, eventBus bus.Bus) *Engine {
	return &Engine{
		store:  st,
		bus:    eventBus,
		logger: util.GetLogger(),
	}
}

// AddOrIncrementLine adds quantity of a product to a table. If the table
// already has a live line for the product, that line's quantity grows and
// its total is recomputed from the current product price; otherwise a new
// line is inserted. Price rule: the current product price applies on both
// paths, so an increment re-prices the whole line.
func (e *Engine) AddOrIncrementLine(ctx context.Context, tableID, productID int64, quantity int) (*models.OrderLine, error) {
	ctx, span := util.StartSpan(ctx, "Engine.AddOrIncrementLine")
	defer span.End()

	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", models.ErrInvalidArgument)
	}

	product, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", productID, models.ErrNotFound)
	}

	existing, err := e.store.FindOrderLine(ctx, tableID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing line: %w", err)
	}

	var line *models.OrderLine
	var eventName string

	if existing != nil {
		existing.Quantity += quantity
		existing.Total = product.Price * float64(existing.Quantity)
		if err := e.store.UpdateOrderLine(ctx, existing.ID, existing.Quantity, existing.Total); err != nil {
			return nil, fmt.Errorf("failed to increment line: %w", err)
		}
		line = existing
		eventName = models.EventOrderUpdated
	} else {
		line = &models.OrderLine{
			TableID:   tableID,
			ProductID: productID,
			Quantity:  quantity,
			Total:     product.Price * float64(quantity),
		}
		if err := e.store.InsertOrderLine(ctx, line); err != nil {
			return nil, fmt.Errorf("failed to insert line: %w", err)
		}
		eventName = models.EventOrderCreated
	}

	util.OrdersCreatedTotal.Inc()
	e.logger.Info("Order line written",
		zap.Int64("table_id", tableID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", line.Quantity))

	if err := e.RecomputeTable(ctx, tableID); err != nil {
		return nil, err
	}

	e.bus.Publish(ctx, eventName, map[string]any{
		"id":        line.ID,
		"tableId":   line.TableID,
		"productId": line.ProductID,
		"quantity":  line.Quantity,
		"total":     line.Total,
	})

	return line, nil
}

// SetLineQuantity changes a line's quantity, re-pricing its total from the
// current product price. A quantity below 1 is an implicit delete.
func (e *Engine) SetLineQuantity(ctx context.Context, orderID int64, quantity int) (*models.OrderLine, error) {
	ctx, span := util.StartSpan(ctx, "Engine.SetLineQuantity")
	defer span.End()

	if quantity < 1 {
		if err := e.RemoveLine(ctx, orderID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	line, err := e.store.GetOrderLine(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order line: %w", err)
	}
	if line == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}

	product, err := e.store.GetProduct(ctx, line.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", line.ProductID, models.ErrNotFound)
	}

	line.Quantity = quantity
	line.Total = product.Price * float64(quantity)
	if err := e.store.UpdateOrderLine(ctx, line.ID, line.Quantity, line.Total); err != nil {
		return nil, fmt.Errorf("failed to update line: %w", err)
	}

	util.OrdersUpdatedTotal.Inc()

	if err := e.RecomputeTable(ctx, line.TableID); err != nil {
		return nil, err
	}

	e.bus.Publish(ctx, models.EventOrderUpdated, map[string]any{
		"id":       line.ID,
		"tableId":  line.TableID,
		"quantity": line.Quantity,
		"total":    line.Total,
	})

	return line, nil
}

// RemoveLine deletes one order line and recomputes the owning table.
func (e *Engine) RemoveLine(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "Engine.RemoveLine")
	defer span.End()

	line, err := e.store.GetOrderLine(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order line: %w", err)
	}
	if line == nil {
		return fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}

	if err := e.store.DeleteOrderLine(ctx, orderID); err != nil {
		return fmt.Errorf("failed to delete line: %w", err)
	}

	util.OrdersDeletedTotal.Inc()

	if err := e.RecomputeTable(ctx, line.TableID); err != nil {
		return err
	}

	e.bus.Publish(ctx, models.EventOrderDeleted, map[string]any{
		"id":      orderID,
		"tableId": line.TableID,
	})

	return nil
}

// RecomputeTable rereads the table's live lines and writes the projection:
// total is the sum of line totals, status is occupied iff any line exists.
// Idempotent; safe to call redundantly.
func (e *Engine) RecomputeTable(ctx context.Context, tableID int64) error {
	status, total, err := recompute(ctx, e.store, tableID)
	if err != nil {
		return err
	}

	e.bus.Publish(ctx, models.EventTableUpdated, map[string]any{
		"id":     tableID,
		"status": status,
		"total":  total,
	})
	return nil
}

// recompute is the transaction-composable body of RecomputeTable: it writes
// the projection but leaves event emission to the caller, so transfer can
// recompute both tables inside one transaction and publish after commit.
func recompute(ctx context.Context, st store.API, tableID int64) (string, float64, error) {
	lines, err := st.LinesForTable(ctx, tableID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read lines for table %d: %w", tableID, err)
	}

	var total float64
	for _, line := range lines {
		total += line.Total
	}

	status := models.TableStatusEmpty
	if len(lines) > 0 {
		status = models.TableStatusOccupied
	}

	if err := st.SetTableState(ctx, tableID, status, total); err != nil {
		return "", 0, fmt.Errorf("failed to write table state: %w", err)
	}
	return status, total, nil
}

// tableState pairs a recomputed projection with its table for post-commit
// event emission.
type tableState struct {
	tableID int64
	status  string
	total   float64
}

// TransferOrders moves every line from one table to another as a single
// all-or-nothing unit. Lines whose product already exists on the
// destination merge by summing quantities (re-priced from the current
// product price); the rest move over keeping their captured totals. A
// failure at any step leaves both tables untouched.
func (e *Engine) TransferOrders(ctx context.Context, fromTableID, toTableID int64) error {
	ctx, span := util.StartSpan(ctx, "Engine.TransferOrders")
	defer span.End()

	if fromTableID == toTableID {
		return fmt.Errorf("cannot transfer a table onto itself: %w", models.ErrInvalidArgument)
	}

	var states []tableState

	err := e.store.WithTx(ctx, func(tx store.API) error {
		sourceLines, err := tx.LinesForTable(ctx, fromTableID)
		if err != nil {
			return fmt.Errorf("failed to read source lines: %w", err)
		}
		if len(sourceLines) == 0 {
			return fmt.Errorf("source table %d has no orders: %w", fromTableID, models.ErrInvalidArgument)
		}

		destLines, err := tx.LinesForTable(ctx, toTableID)
		if err != nil {
			return fmt.Errorf("failed to read destination lines: %w", err)
		}

		destByProduct := make(map[int64]*models.OrderLine, len(destLines))
		for i := range destLines {
			destByProduct[destLines[i].ProductID] = &destLines[i]
		}

		for _, src := range sourceLines {
			if dest, ok := destByProduct[src.ProductID]; ok {
				product, err := tx.GetProduct(ctx, src.ProductID)
				if err != nil {
					return fmt.Errorf("failed to load product %d: %w", src.ProductID, err)
				}
				if product == nil {
					return fmt.Errorf("product %d: %w", src.ProductID, models.ErrNotFound)
				}
				dest.Quantity += src.Quantity
				dest.Total = product.Price * float64(dest.Quantity)
				if err := tx.UpdateOrderLine(ctx, dest.ID, dest.Quantity, dest.Total); err != nil {
					return fmt.Errorf("failed to merge line: %w", err)
				}
			} else {
				moved := &models.OrderLine{
					TableID:   toTableID,
					ProductID: src.ProductID,
					Quantity:  src.Quantity,
					Total:     src.Total,
				}
				if err := tx.InsertOrderLine(ctx, moved); err != nil {
					return fmt.Errorf("failed to move line: %w", err)
				}
			}
		}

		if err := tx.DeleteLinesForTable(ctx, fromTableID); err != nil {
			return fmt.Errorf("failed to clear source table: %w", err)
		}

		for _, id := range []int64{fromTableID, toTableID} {
			status, total, err := recompute(ctx, tx, id)
			if err != nil {
				return err
			}
			states = append(states, tableState{tableID: id, status: status, total: total})
		}
		return nil
	})
	if err != nil {
		util.TransfersFailedTotal.Inc()
		return err
	}

	util.TransfersTotal.Inc()
	e.logger.Info("Orders transferred",
		zap.Int64("from_table_id", fromTableID),
		zap.Int64("to_table_id", toTableID))

	e.bus.Publish(ctx, models.EventOrdersTransfer, map[string]any{
		"fromTableId": fromTableID,
		"toTableId":   toTableID,
	})
	for _, st := range states {
		e.bus.Publish(ctx, models.EventTableUpdated, map[string]any{
			"id":     st.tableID,
			"status": st.status,
			"total":  st.total,
		})
	}
	return nil
}

// SettlePayment snapshots the table's total, appends a payment with that
// amount, clears the table's ledger and resets the projection — one
// transactional unit. The recorded amount is the pre-settlement total even
// if another order lands immediately after.
func (e *Engine) SettlePayment(ctx context.Context, tableID int64, paymentType string) (*models.Payment, error) {
	ctx, span := util.StartSpan(ctx, "Engine.SettlePayment")
	defer span.End()

	var payment *models.Payment

	err := e.store.WithTx(ctx, func(tx store.API) error {
		table, err := tx.GetTable(ctx, tableID)
		if err != nil {
			return fmt.Errorf("failed to load table: %w", err)
		}
		if table == nil {
			return fmt.Errorf("table %d: %w", tableID, models.ErrNotFound)
		}

		payment = &models.Payment{
			TableID:     tableID,
			Amount:      table.Total,
			PaymentType: paymentType,
		}
		if err := tx.InsertPayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		if err := tx.DeleteLinesForTable(ctx, tableID); err != nil {
			return fmt.Errorf("failed to clear ledger: %w", err)
		}

		if err := tx.SetTableState(ctx, tableID, models.TableStatusEmpty, 0); err != nil {
			return fmt.Errorf("failed to reset table: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.PaymentsSettledTotal.WithLabelValues(paymentType).Inc()
	e.logger.Info("Payment settled",
		zap.Int64("table_id", tableID),
		zap.Float64("amount", payment.Amount),
		zap.String("payment_type", paymentType))

	e.bus.Publish(ctx, models.EventPaymentCompleted, map[string]any{
		"tableId":     tableID,
		"amount":      payment.Amount,
		"paymentType": paymentType,
	})
	e.bus.Publish(ctx, models.EventTableUpdated, map[string]any{
		"id":     tableID,
		"status": models.TableStatusEmpty,
		"total":  float64(0),
	})

	return payment, nil
}

// OrdersForTable lists a table's live lines joined with product details.
func (e *Engine) OrdersForTable(ctx context.Context, tableID int64) ([]models.OrderLineView, error) {
	return e.store.OrderViewForTable(ctx, tableID)
}
