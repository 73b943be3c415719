// Package stock derives period stock summaries by rolling the current
// on-hand quantity backward through the purchase, sale and adjustment
// history. The system keeps no historical snapshots; the current quantity
// is the only authoritative anchor.
package stock

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/retailbooks/retailbooks/internal/period"
	"github.com/retailbooks/retailbooks/internal/store"
)

// Summary is the reconciled quantity view of one product for a period.
type Summary struct {
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	OpeningQty   float64 `json:"opening_qty"`
	PurchasedQty float64 `json:"purchased_qty"`
	SoldQty      float64 `json:"sold_qty"`
	AdjustedQty  float64 `json:"adjusted_qty"`
	NetChange    float64 `json:"net_change"`
	ClosingQty   float64 `json:"closing_qty"`
	// Drift is the unexplained difference between the stored current
	// quantity and the quantity implied by the full event history. The
	// opening figure absorbs it unchanged, as the balance math always has;
	// Drift only surfaces it.
	Drift float64 `json:"drift"`
}

// batchConcurrency bounds parallel per-product reconciliation fan-out.
const batchConcurrency = 8

// Service reconciles product quantities against movement history.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService constructs the stock service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// ProductSummary reconciles a single product over the period.
func (s *Service) ProductSummary(ctx context.Context, productID int64, rng period.Range) (Summary, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(ctx, product, rng)
}

// AllSummaries reconciles every active product over the period.
func (s *Service) AllSummaries(ctx context.Context, rng period.Range) ([]Summary, error) {
	products, err := s.store.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make([]Summary, 0, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, product := range products {
		g.Go(func() error {
			summary, err := s.summarize(gctx, product, rng)
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, summary)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (s *Service) summarize(ctx context.Context, product store.Product, rng period.Range) (Summary, error) {
	sinceStart, err := s.store.ProductMovement(ctx, product.ID, rng.Start, time.Time{})
	if err != nil {
		return Summary{}, err
	}
	adjSinceStart, err := s.adjustedTotal(ctx, product.ID, rng.Start, time.Time{})
	if err != nil {
		return Summary{}, err
	}

	periodMove, err := s.store.ProductMovement(ctx, product.ID, rng.Start, rng.End)
	if err != nil {
		return Summary{}, err
	}
	adjPeriod, err := s.adjustedTotal(ctx, product.ID, rng.Start, rng.End)
	if err != nil {
		return Summary{}, err
	}

	allTime, err := s.store.ProductMovement(ctx, product.ID, time.Time{}, time.Time{})
	if err != nil {
		return Summary{}, err
	}
	adjAllTime, err := s.adjustedTotal(ctx, product.ID, time.Time{}, time.Time{})
	if err != nil {
		return Summary{}, err
	}

	opening := product.Quantity - sinceStart.PurchasedQty + sinceStart.SoldQty - adjSinceStart
	netChange := periodMove.PurchasedQty - periodMove.SoldQty + adjPeriod
	implied := allTime.PurchasedQty - allTime.SoldQty + adjAllTime

	return Summary{
		ProductID:    product.ID,
		Name:         product.Name,
		OpeningQty:   opening,
		PurchasedQty: periodMove.PurchasedQty,
		SoldQty:      periodMove.SoldQty,
		AdjustedQty:  adjPeriod,
		NetChange:    netChange,
		ClosingQty:   opening + netChange,
		Drift:        product.Quantity - implied,
	}, nil
}

// adjustedTotal sums the signed new-minus-old deltas of adjustments in the
// range. The delta is always derived arithmetically; it is the only value
// guaranteed consistent with the stored current quantity.
func (s *Service) adjustedTotal(ctx context.Context, productID int64, from, to time.Time) (float64, error) {
	adjustments, err := s.store.AdjustmentsByProduct(ctx, productID, from, to)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, a := range adjustments {
		total += a.Delta()
	}
	return total, nil
}
