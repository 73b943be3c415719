package insights

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailbooks/retailbooks/internal/store"
)

// Service derives customer segments from the event store.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the insights service. The clock is injectable for
// tests and defaults to time.Now.
func NewService(st store.Store, logger *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: st, logger: logger, now: now}
}

// Customers classifies every known customer, sorted by trailing-year
// revenue descending.
func (s *Service) Customers(ctx context.Context) ([]CustomerInsight, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]CustomerInsight, 0, len(customers))
	for _, customer := range customers {
		sales, err := s.store.SalesByCustomer(ctx, customer.ID, time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		rows = append(rows, Classify(customer, sales, now))
	}
	sortInsights(rows)

	s.logger.Info("customer insights derived", slog.Int("customers", len(rows)))
	return rows, nil
}
