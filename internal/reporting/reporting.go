// Package reporting reads the append-only payment ledger. Calendar days
// are computed at the venue's fixed UTC offset, not at the server's zone.
package reporting

import (
	"context"
	"fmt"
	"time"

	"cafe-pos/internal/models"
	"cafe-pos/internal/store"
)

type Service struct {
	store     store.API
	utcOffset int
}

func New(st store.API, utcOffsetHours int) *Service {
	return &Service{store: st, utcOffset: utcOffsetHours}
}

// History lists settled payments with table names, newest first. An empty
// date returns everything.
func (s *Service) History(ctx context.Context, date string) ([]models.PaymentView, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", models.ErrInvalidArgument)
		}
	}
	return s.store.PaymentsByDate(ctx, date, s.utcOffset)
}

// Daily aggregates one venue-local day. An empty date means today at the
// venue's offset.
func (s *Service) Daily(ctx context.Context, date string) (*models.DailyReport, error) {
	if date == "" {
		date = time.Now().UTC().Add(time.Duration(s.utcOffset) * time.Hour).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", models.ErrInvalidArgument)
	}
	return s.store.DailyReport(ctx, date, s.utcOffset)
}
