package reporting

import (
	"context"
	"testing"
	"time"

	"cafe-pos/internal/models"
	"cafe-pos/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPayment(t *testing.T, mem *storetest.Memory, tableID int64, amount float64, paymentType string, at time.Time) {
	t.Helper()
	err := mem.InsertPayment(context.Background(), &models.Payment{
		TableID:     tableID,
		Amount:      amount,
		PaymentType: paymentType,
		CreatedAt:   at,
	})
	require.NoError(t, err)
}

func TestHistory_RejectsMalformedDate(t *testing.T) {
	svc := New(storetest.NewMemory(), 3)

	_, err := svc.History(context.Background(), "15-06-2026")
	require.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = svc.History(context.Background(), "yesterday")
	require.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestHistory_EmptyDateReturnsEverything(t *testing.T) {
	mem := storetest.NewMemory()
	svc := New(mem, 3)
	ctx := context.Background()

	table, err := mem.InsertTable(ctx, "Table 1")
	require.NoError(t, err)

	seedPayment(t, mem, table.ID, 100, models.PaymentTypeCash, time.Date(2026, 6, 14, 12, 0, 0, 0, time.UTC))
	seedPayment(t, mem, table.ID, 200, models.PaymentTypeCard, time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC))

	payments, err := svc.History(ctx, "")
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, "Table 1", payments[0].TableName)
}

func TestHistory_VenueDayBoundary(t *testing.T) {
	mem := storetest.NewMemory()
	svc := New(mem, 3)
	ctx := context.Background()

	table, err := mem.InsertTable(ctx, "Table 1")
	require.NoError(t, err)

	// 22:30 UTC on the 14th is 01:30 on the 15th at UTC+3: the payment
	// belongs to the venue's 15th.
	seedPayment(t, mem, table.ID, 100, models.PaymentTypeCash, time.Date(2026, 6, 14, 22, 30, 0, 0, time.UTC))
	// 20:59 UTC is 23:59 local: still the 14th.
	seedPayment(t, mem, table.ID, 200, models.PaymentTypeCard, time.Date(2026, 6, 14, 20, 59, 0, 0, time.UTC))

	day14, err := svc.History(ctx, "2026-06-14")
	require.NoError(t, err)
	require.Len(t, day14, 1)
	assert.Equal(t, 200.00, day14[0].Amount)

	day15, err := svc.History(ctx, "2026-06-15")
	require.NoError(t, err)
	require.Len(t, day15, 1)
	assert.Equal(t, 100.00, day15[0].Amount)
}

func TestDaily_AggregatesByType(t *testing.T) {
	mem := storetest.NewMemory()
	svc := New(mem, 3)
	ctx := context.Background()

	t1, err := mem.InsertTable(ctx, "Table 1")
	require.NoError(t, err)
	t2, err := mem.InsertTable(ctx, "Table 2")
	require.NoError(t, err)

	noon := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	seedPayment(t, mem, t1.ID, 100, models.PaymentTypeCash, noon)
	seedPayment(t, mem, t1.ID, 50, models.PaymentTypeCash, noon.Add(time.Hour))
	seedPayment(t, mem, t2.ID, 200, models.PaymentTypeCard, noon.Add(2*time.Hour))
	// Different venue day, must not count.
	seedPayment(t, mem, t2.ID, 999, models.PaymentTypeCash, noon.AddDate(0, 0, -1))

	report, err := svc.Daily(ctx, "2026-06-15")
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalTables)
	assert.Equal(t, 3, report.TotalPayments)
	assert.Equal(t, 350.00, report.TotalRevenue)
	assert.Equal(t, 150.00, report.CashRevenue)
	assert.Equal(t, 200.00, report.CardRevenue)
}

func TestDaily_RejectsMalformedDate(t *testing.T) {
	svc := New(storetest.NewMemory(), 3)

	_, err := svc.Daily(context.Background(), "June 15")
	require.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestDaily_EmptyDayIsZeroedNotError(t *testing.T) {
	svc := New(storetest.NewMemory(), 3)

	report, err := svc.Daily(context.Background(), "2026-06-15")
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalPayments)
	assert.Equal(t, 0.00, report.TotalRevenue)
}
