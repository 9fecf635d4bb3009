package engine

import (
	"context"
	"sync"
	"testing"

	"cafe-pos/internal/models"
	"cafe-pos/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures published events so tests can assert the broadcast
// contract without a real hub.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	name string
	data map[string]any
}

func (r *recorder) Publish(ctx context.Context, name string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: name, data: data})
}

func (r *recorder) named(name string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	mem    *storetest.Memory
	bus    *recorder
	engine *Engine
}

// newFixture seeds two tables and two products (tea 10.00, coffee 25.00).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storetest.NewMemory()
	ctx := context.Background()

	_, err := mem.InsertTable(ctx, "Table 1")
	require.NoError(t, err)
	_, err = mem.InsertTable(ctx, "Table 2")
	require.NoError(t, err)

	_, err = mem.InsertCategory(ctx, "Drinks", "#3B82F6")
	require.NoError(t, err)
	_, err = mem.InsertProduct(ctx, "Tea", 10.00, 3, "#FFFFFF")
	require.NoError(t, err)
	_, err = mem.InsertProduct(ctx, "Coffee", 25.00, 3, "#FFFFFF")
	require.NoError(t, err)

	rec := &recorder{}
	return &fixture{mem: mem, bus: rec, engine: New(mem, rec)}
}

const (
	table1 = int64(1)
	table2 = int64(2)
	tea    = int64(4)
	coffee = int64(5)
)

// requireProjection asserts the table invariant: total equals the sum of
// live line totals and status tracks line count.
func requireProjection(t *testing.T, mem *storetest.Memory, tableID int64) {
	t.Helper()
	ctx := context.Background()

	lines, err := mem.LinesForTable(ctx, tableID)
	require.NoError(t, err)

	var sum float64
	for _, l := range lines {
		sum += l.Total
	}

	table, err := mem.GetTable(ctx, tableID)
	require.NoError(t, err)
	require.NotNil(t, table)

	assert.Equal(t, sum, table.Total, "table %d total must equal sum of line totals", tableID)
	if len(lines) > 0 {
		assert.Equal(t, models.TableStatusOccupied, table.Status)
	} else {
		assert.Equal(t, models.TableStatusEmpty, table.Status)
	}
}

func TestAddOrIncrementLine_NewLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	line, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 20.00, line.Total)

	table, _ := f.mem.GetTable(ctx, table1)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
	assert.Equal(t, 20.00, table.Total)

	require.Len(t, f.bus.named(models.EventOrderCreated), 1)
	requireProjection(t, f.mem, table1)
}

func TestAddOrIncrementLine_MergesExistingLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 2)
	require.NoError(t, err)

	line, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
	assert.Equal(t, 50.00, line.Total)

	lines, _ := f.mem.LinesForTable(ctx, table1)
	require.Len(t, lines, 1, "same product on same table must merge, not duplicate")
	requireProjection(t, f.mem, table1)
}

func TestAddOrIncrementLine_RepricesFromCurrentPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 2)
	require.NoError(t, err)

	// Price change between add and increment: the whole line re-prices.
	require.NoError(t, f.mem.UpdateProduct(ctx, tea, "Tea", 12.00, 3, "#FFFFFF"))

	line, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 36.00, line.Total)
	requireProjection(t, f.mem, table1)
}

func TestAddOrIncrementLine_ProductNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.AddOrIncrementLine(context.Background(), table1, 999, 1)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, f.bus.events, "failed mutation must not publish")
}

func TestAddOrIncrementLine_RejectsZeroQuantity(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.AddOrIncrementLine(context.Background(), table1, tea, 0)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestSetLineQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.engine.AddOrIncrementLine(ctx, table1, coffee, 1)
	require.NoError(t, err)

	line, err := f.engine.SetLineQuantity(ctx, created.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, 100.00, line.Total)
	requireProjection(t, f.mem, table1)
}

func TestSetLineQuantity_BelowOneDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.engine.AddOrIncrementLine(ctx, table1, coffee, 2)
	require.NoError(t, err)

	line, err := f.engine.SetLineQuantity(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, line)

	lines, _ := f.mem.LinesForTable(ctx, table1)
	assert.Empty(t, lines)

	table, _ := f.mem.GetTable(ctx, table1)
	assert.Equal(t, models.TableStatusEmpty, table.Status)
	assert.Equal(t, 0.00, table.Total)
}

func TestSetLineQuantity_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.SetLineQuantity(context.Background(), 999, 2)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestRemoveLine_NotFound(t *testing.T) {
	f := newFixture(t)

	err := f.engine.RemoveLine(context.Background(), 999)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestProjectionInvariantAcrossOperationSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l1, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 2)
	require.NoError(t, err)
	requireProjection(t, f.mem, table1)

	_, err = f.engine.AddOrIncrementLine(ctx, table1, coffee, 1)
	require.NoError(t, err)
	requireProjection(t, f.mem, table1)

	_, err = f.engine.SetLineQuantity(ctx, l1.ID, 5)
	require.NoError(t, err)
	requireProjection(t, f.mem, table1)

	require.NoError(t, f.engine.TransferOrders(ctx, table1, table2))
	requireProjection(t, f.mem, table1)
	requireProjection(t, f.mem, table2)

	_, err = f.engine.SettlePayment(ctx, table2, models.PaymentTypeCash)
	require.NoError(t, err)
	requireProjection(t, f.mem, table2)
}

func TestRecomputeTableIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 3)
	require.NoError(t, err)

	require.NoError(t, f.engine.RecomputeTable(ctx, table1))
	first, _ := f.mem.GetTable(ctx, table1)

	require.NoError(t, f.engine.RecomputeTable(ctx, table1))
	second, _ := f.mem.GetTable(ctx, table1)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Status, second.Status)
}

func TestTransferOrders_MergesAndClearsSource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Table 1: tea x2, coffee x1. Table 2: tea x3.
	_, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 2)
	require.NoError(t, err)
	_, err = f.engine.AddOrIncrementLine(ctx, table1, coffee, 1)
	require.NoError(t, err)
	_, err = f.engine.AddOrIncrementLine(ctx, table2, tea, 3)
	require.NoError(t, err)

	require.NoError(t, f.engine.TransferOrders(ctx, table1, table2))

	source, _ := f.mem.LinesForTable(ctx, table1)
	assert.Empty(t, source)

	sourceTable, _ := f.mem.GetTable(ctx, table1)
	assert.Equal(t, models.TableStatusEmpty, sourceTable.Status)
	assert.Equal(t, 0.00, sourceTable.Total)

	dest, _ := f.mem.LinesForTable(ctx, table2)
	require.Len(t, dest, 2)

	byProduct := make(map[int64]models.OrderLine)
	for _, l := range dest {
		byProduct[l.ProductID] = l
	}
	assert.Equal(t, 5, byProduct[tea].Quantity)
	assert.Equal(t, 50.00, byProduct[tea].Total)
	assert.Equal(t, 1, byProduct[coffee].Quantity)

	requireProjection(t, f.mem, table2)
}

func TestTransferOrders_SameTableRejected(t *testing.T) {
	f := newFixture(t)

	err := f.engine.TransferOrders(context.Background(), table1, table1)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestTransferOrders_EmptySourceRejected(t *testing.T) {
	f := newFixture(t)

	err := f.engine.TransferOrders(context.Background(), table1, table2)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestTransferOrders_AtomicOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 2)
	require.NoError(t, err)
	_, err = f.engine.AddOrIncrementLine(ctx, table2, tea, 3)
	require.NoError(t, err)
	f.bus.reset()

	// Fail after the destination merge, before the source delete commits.
	f.mem.FailOn["DeleteLinesForTable"] = assert.AnError

	err = f.engine.TransferOrders(ctx, table1, table2)
	require.Error(t, err)

	// Both tables must show the full pre-transfer state.
	source, _ := f.mem.LinesForTable(ctx, table1)
	require.Len(t, source, 1)
	assert.Equal(t, 2, source[0].Quantity)

	dest, _ := f.mem.LinesForTable(ctx, table2)
	require.Len(t, dest, 1)
	assert.Equal(t, 3, dest[0].Quantity)

	requireProjection(t, f.mem, table1)
	requireProjection(t, f.mem, table2)
	assert.Empty(t, f.bus.events, "rolled-back transfer must not publish")
}

func TestSettlePayment_SnapshotsTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 6 x 25.00 = 150.00
	_, err := f.engine.AddOrIncrementLine(ctx, table1, coffee, 6)
	require.NoError(t, err)

	payment, err := f.engine.SettlePayment(ctx, table1, models.PaymentTypeCash)
	require.NoError(t, err)
	assert.Equal(t, 150.00, payment.Amount)
	assert.Equal(t, models.PaymentTypeCash, payment.PaymentType)

	lines, _ := f.mem.LinesForTable(ctx, table1)
	assert.Empty(t, lines)

	table, _ := f.mem.GetTable(ctx, table1)
	assert.Equal(t, models.TableStatusEmpty, table.Status)
	assert.Equal(t, 0.00, table.Total)

	// An order landing right after settlement starts a fresh tab and
	// cannot bleed into the recorded amount.
	_, err = f.engine.AddOrIncrementLine(ctx, table1, tea, 1)
	require.NoError(t, err)
	assert.Equal(t, 150.00, f.mem.Payments[0].Amount)
	requireProjection(t, f.mem, table1)
}

func TestSettlePayment_TableNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.SettlePayment(context.Background(), 999, models.PaymentTypeCard)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSettlePayment_AtomicOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddOrIncrementLine(ctx, table1, coffee, 2)
	require.NoError(t, err)

	f.mem.FailOn["DeleteLinesForTable"] = assert.AnError

	_, err = f.engine.SettlePayment(ctx, table1, models.PaymentTypeCash)
	require.Error(t, err)

	// The payment insert must have rolled back with the rest.
	assert.Empty(t, f.mem.Payments)
	lines, _ := f.mem.LinesForTable(ctx, table1)
	assert.Len(t, lines, 1)
	requireProjection(t, f.mem, table1)
}

func TestDeleteTable_RejectedWhileOccupied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 1)
	require.NoError(t, err)

	err = f.engine.DeleteTable(ctx, table1)
	require.ErrorIs(t, err, models.ErrInvalidArgument)

	table, _ := f.mem.GetTable(ctx, table1)
	require.NotNil(t, table)
}

func TestDeleteTable_EmptyTableDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.DeleteTable(ctx, table2))

	table, _ := f.mem.GetTable(ctx, table2)
	assert.Nil(t, table)
	require.Len(t, f.bus.named(models.EventTableDeleted), 1)
}

func TestRequestPayment_FiresNotification(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.RequestPayment(context.Background(), table1))

	events := f.bus.named(models.EventPaymentRequested)
	require.Len(t, events, 1)
	assert.Equal(t, table1, events[0].data["tableId"])
}

func TestNotificationCompleteness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assertTableEvent := func(op string, tableIDs ...int64) {
		t.Helper()
		found := make(map[int64]bool)
		f.bus.mu.Lock()
		for _, e := range f.bus.events {
			for _, key := range []string{"tableId", "id", "fromTableId", "toTableId"} {
				if id, ok := e.data[key].(int64); ok {
					found[id] = true
				}
			}
		}
		f.bus.mu.Unlock()
		for _, id := range tableIDs {
			assert.True(t, found[id], "%s must emit an event identifying table %d", op, id)
		}
		f.bus.reset()
	}

	line, err := f.engine.AddOrIncrementLine(ctx, table1, tea, 2)
	require.NoError(t, err)
	assertTableEvent("add", table1)

	_, err = f.engine.SetLineQuantity(ctx, line.ID, 3)
	require.NoError(t, err)
	assertTableEvent("update", table1)

	require.NoError(t, f.engine.TransferOrders(ctx, table1, table2))
	assertTableEvent("transfer", table1, table2)

	lines, _ := f.mem.LinesForTable(ctx, table2)
	require.NoError(t, f.engine.RemoveLine(ctx, lines[0].ID))
	assertTableEvent("delete", table2)

	_, err = f.engine.AddOrIncrementLine(ctx, table2, coffee, 1)
	require.NoError(t, err)
	f.bus.reset()
	_, err = f.engine.SettlePayment(ctx, table2, models.PaymentTypeCard)
	require.NoError(t, err)
	assertTableEvent("settle", table2)
}
