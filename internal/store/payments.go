package store

import (
	"context"

	"cafe-pos/internal/models"
)

func (s *Store) InsertPayment(ctx context.Context, payment *models.Payment) error {
	return s.get(ctx, payment, `
		INSERT INTO payments (table_id, amount, payment_type)
		VALUES ($1, $2, $3)
		RETURNING *`, payment.TableID, payment.Amount, payment.PaymentType)
}

// PaymentsByDate lists payments newest first, joined with the table name.
// A non-empty date filters by venue-local calendar day: the fixed UTC
// offset is applied to the stored UTC timestamp before comparing.
func (s *Store) PaymentsByDate(ctx context.Context, date string, utcOffsetHours int) ([]models.PaymentView, error) {
	query := `
		SELECT p.id, p.table_id, p.amount, p.payment_type, p.created_at,
		       COALESCE(t.name, '') AS table_name
		FROM payments p
		LEFT JOIN tables t ON p.table_id = t.id`
	args := []interface{}{}

	if date != "" {
		query += ` WHERE (p.created_at + make_interval(hours => $1))::date = $2::date`
		args = append(args, utcOffsetHours, date)
	}
	query += ` ORDER BY p.created_at DESC`

	var payments []models.PaymentView
	err := s.sel(ctx, &payments, query, args...)
	return payments, err
}

// DailyReport aggregates one venue-local day of settled payments.
func (s *Store) DailyReport(ctx context.Context, date string, utcOffsetHours int) (*models.DailyReport, error) {
	var report models.DailyReport
	err := s.get(ctx, &report, `
		SELECT
			COUNT(DISTINCT p.table_id)                                         AS total_tables,
			COUNT(p.id)                                                        AS total_payments,
			COALESCE(SUM(p.amount), 0)                                         AS total_revenue,
			COALESCE(SUM(CASE WHEN p.payment_type = 'Cash' THEN p.amount ELSE 0 END), 0) AS cash_revenue,
			COALESCE(SUM(CASE WHEN p.payment_type = 'Card' THEN p.amount ELSE 0 END), 0) AS card_revenue
		FROM payments p
		WHERE (p.created_at + make_interval(hours => $1))::date = $2::date`,
		utcOffsetHours, date)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
