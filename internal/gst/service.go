package gst

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/retailbooks/retailbooks/internal/period"
	"github.com/retailbooks/retailbooks/internal/shared"
	"github.com/retailbooks/retailbooks/internal/store"
)

// DefaultQueryBudget bounds how long one filing build may spend reading
// event history. Report size scales with invoice volume, so the budget
// keeps a runaway year-wide report from holding a connection forever.
const DefaultQueryBudget = 30 * time.Second

// Service assembles periodic GST filings from the event store.
type Service struct {
	store  store.Store
	cache  *Cache
	logger *slog.Logger
	budget time.Duration
}

// NewService constructs the filing service. A zero budget falls back to
// DefaultQueryBudget; a nil cache disables caching.
func NewService(st store.Store, cache *Cache, logger *slog.Logger, budget time.Duration) *Service {
	if budget <= 0 {
		budget = DefaultQueryBudget
	}
	return &Service{store: st, cache: cache, logger: logger, budget: budget}
}

// Filing resolves the period and builds (or loads from cache) the full
// statutory filing report.
func (s *Service) Filing(ctx context.Context, spec period.Spec) (*Filing, error) {
	shop, err := s.store.GetShopConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !shop.Configured() {
		return nil, shared.ErrShopUnconfigured
	}

	rng, err := period.Resolve(spec)
	if err != nil {
		return nil, err
	}

	key, err := s.cache.BuildKey(ctx, "gst", "filing", rng.Start.Format(time.DateOnly), rng.End.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}

	var filing Filing
	err = s.cache.FetchJSON(ctx, key, &filing, func(ctx context.Context) (interface{}, error) {
		return s.build(ctx, shop, rng)
	})
	if err != nil {
		return nil, err
	}
	return &filing, nil
}

func (s *Service) build(ctx context.Context, shop store.ShopConfig, rng period.Range) (*Filing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	started := time.Now()

	sales, err := s.store.SalesInRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, s.budgetErr(err)
	}
	notes, err := s.store.TransactionsInRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, s.budgetErr(err)
	}

	customerIDs := make([]int64, 0, len(sales))
	productIDs := make([]int64, 0)
	seenCustomers := map[int64]bool{}
	seenProducts := map[int64]bool{}
	for _, sale := range sales {
		if sale.CustomerID != 0 && !seenCustomers[sale.CustomerID] {
			seenCustomers[sale.CustomerID] = true
			customerIDs = append(customerIDs, sale.CustomerID)
		}
		for _, item := range sale.Items {
			if !seenProducts[item.ProductID] {
				seenProducts[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}
	for _, note := range notes {
		if note.EntityType == store.EntityCustomer && note.EntityID != 0 && !seenCustomers[note.EntityID] {
			seenCustomers[note.EntityID] = true
			customerIDs = append(customerIDs, note.EntityID)
		}
	}

	customers, err := s.store.CustomersByIDs(ctx, customerIDs)
	if err != nil {
		return nil, s.budgetErr(err)
	}
	products, err := s.store.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, s.budgetErr(err)
	}

	filing := BuildFiling(Input{
		Shop:      shop,
		Sales:     sales,
		Customers: customers,
		Products:  products,
		Notes:     notes,
	})

	s.logger.Info("gst filing built",
		slog.String("from", rng.Start.Format(time.DateOnly)),
		slog.String("to", rng.End.Format(time.DateOnly)),
		slog.Int("sales", len(sales)),
		slog.Duration("took", time.Since(started)))

	return filing, nil
}

func (s *Service) budgetErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("filing build exceeded %s: %w", s.budget, shared.ErrTimeout)
	}
	return err
}
