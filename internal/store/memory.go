package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/retailbooks/retailbooks/internal/shared"
)

// Memory is an in-memory Store used by service tests and local fixtures.
// It applies the same filtering rules as the SQL adapter: date-truncated
// inclusive ranges, cancelled and deleted documents excluded, quotes
// excluded from sales.
type Memory struct {
	Shop        ShopConfig
	Customers   map[int64]Customer
	Suppliers   map[int64]Supplier
	Products    map[int64]Product
	Sales       []Sale
	Purchases   []Purchase
	Txns        []Transaction
	Expenses    []Expense
	Adjustments []StockAdjustment
}

// NewMemory returns an empty fixture store.
func NewMemory() *Memory {
	return &Memory{
		Customers: make(map[int64]Customer),
		Suppliers: make(map[int64]Supplier),
		Products:  make(map[int64]Product),
	}
}

func inRange(d time.Time, from, to time.Time) bool {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if !from.IsZero() && d.Before(time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)) {
		return false
	}
	if !to.IsZero() && d.After(time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)) {
		return false
	}
	return true
}

func (m *Memory) GetShopConfig(ctx context.Context) (ShopConfig, error) {
	return m.Shop, nil
}

func (m *Memory) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	c, ok := m.Customers[id]
	if !ok {
		return Customer{}, fmt.Errorf("store: customer %d: %w", id, shared.ErrNotFound)
	}
	return c, nil
}

func (m *Memory) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	s, ok := m.Suppliers[id]
	if !ok {
		return Supplier{}, fmt.Errorf("store: supplier %d: %w", id, shared.ErrNotFound)
	}
	return s, nil
}

func (m *Memory) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, ok := m.Products[id]
	if !ok {
		return Product{}, fmt.Errorf("store: product %d: %w", id, shared.ErrNotFound)
	}
	return p, nil
}

func (m *Memory) ListCustomers(ctx context.Context) ([]Customer, error) {
	out := make([]Customer, 0, len(m.Customers))
	for _, c := range m.Customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListActiveProducts(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.Products))
	for _, p := range m.Products {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CustomersByIDs(ctx context.Context, ids []int64) (map[int64]Customer, error) {
	out := make(map[int64]Customer, len(ids))
	for _, id := range ids {
		if c, ok := m.Customers[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *Memory) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]Product, error) {
	out := make(map[int64]Product, len(ids))
	for _, id := range ids {
		if p, ok := m.Products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *Memory) filterSales(pred func(Sale) bool) []Sale {
	var out []Sale
	for _, s := range m.Sales {
		if s.IsQuote || !s.Status.Countable() {
			continue
		}
		if pred(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) SalesByCustomer(ctx context.Context, customerID int64, from, to time.Time) ([]Sale, error) {
	return m.filterSales(func(s Sale) bool {
		return s.CustomerID == customerID && inRange(s.Date, from, to)
	}), nil
}

func (m *Memory) SalesInRange(ctx context.Context, from, to time.Time) ([]Sale, error) {
	return m.filterSales(func(s Sale) bool { return inRange(s.Date, from, to) }), nil
}

func (m *Memory) filterPurchases(pred func(Purchase) bool) []Purchase {
	var out []Purchase
	for _, p := range m.Purchases {
		if !p.Status.Countable() {
			continue
		}
		if pred(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) PurchasesBySupplier(ctx context.Context, supplierID int64, from, to time.Time) ([]Purchase, error) {
	return m.filterPurchases(func(p Purchase) bool {
		return p.SupplierID == supplierID && inRange(p.Date, from, to)
	}), nil
}

func (m *Memory) PurchasesInRange(ctx context.Context, from, to time.Time) ([]Purchase, error) {
	return m.filterPurchases(func(p Purchase) bool { return inRange(p.Date, from, to) }), nil
}

func (m *Memory) filterTxns(pred func(Transaction) bool) []Transaction {
	var out []Transaction
	for _, t := range m.Txns {
		if !t.Status.Countable() {
			continue
		}
		if pred(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) TransactionsByEntity(ctx context.Context, entityType EntityType, entityID int64, from, to time.Time) ([]Transaction, error) {
	return m.filterTxns(func(t Transaction) bool {
		return t.EntityType == entityType && t.EntityID == entityID && inRange(t.Date, from, to)
	}), nil
}

func (m *Memory) TransactionsInRange(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	return m.filterTxns(func(t Transaction) bool { return inRange(t.Date, from, to) }), nil
}

func (m *Memory) ExpensesInRange(ctx context.Context, from, to time.Time) ([]Expense, error) {
	var out []Expense
	for _, e := range m.Expenses {
		if !e.Status.Countable() {
			continue
		}
		if inRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) AdjustmentsByProduct(ctx context.Context, productID int64, from, to time.Time) ([]StockAdjustment, error) {
	var out []StockAdjustment
	for _, a := range m.Adjustments {
		if a.ProductID == productID && inRange(a.Date, from, to) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) ProductMovement(ctx context.Context, productID int64, from, to time.Time) (Movement, error) {
	var mv Movement
	for _, p := range m.Purchases {
		if !p.Status.Countable() || !inRange(p.Date, from, to) {
			continue
		}
		for _, it := range p.Items {
			if it.ProductID == productID {
				mv.PurchasedQty += it.Quantity
			}
		}
	}
	for _, s := range m.Sales {
		if s.IsQuote || !s.Status.Countable() || !inRange(s.Date, from, to) {
			continue
		}
		for _, it := range s.Items {
			if it.ProductID == productID {
				mv.SoldQty += it.Quantity
			}
		}
	}
	return mv, nil
}
