package store

import (
	"context"
	"time"
)

// Store is the event source adapter contract. Implementations return rows
// already filtered to the requested date range and entity, with cancelled
// and deleted documents excluded.
//
// Range arguments are inclusive calendar dates; a zero time leaves that
// side of the range unbounded.
type Store interface {
	GetShopConfig(ctx context.Context) (ShopConfig, error)

	GetCustomer(ctx context.Context, id int64) (Customer, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	ListActiveProducts(ctx context.Context) ([]Product, error)
	CustomersByIDs(ctx context.Context, ids []int64) (map[int64]Customer, error)
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]Product, error)

	SalesByCustomer(ctx context.Context, customerID int64, from, to time.Time) ([]Sale, error)
	SalesInRange(ctx context.Context, from, to time.Time) ([]Sale, error)
	PurchasesBySupplier(ctx context.Context, supplierID int64, from, to time.Time) ([]Purchase, error)
	PurchasesInRange(ctx context.Context, from, to time.Time) ([]Purchase, error)

	TransactionsByEntity(ctx context.Context, entityType EntityType, entityID int64, from, to time.Time) ([]Transaction, error)
	TransactionsInRange(ctx context.Context, from, to time.Time) ([]Transaction, error)
	ExpensesInRange(ctx context.Context, from, to time.Time) ([]Expense, error)

	AdjustmentsByProduct(ctx context.Context, productID int64, from, to time.Time) ([]StockAdjustment, error)
	ProductMovement(ctx context.Context, productID int64, from, to time.Time) (Movement, error)
}

// Movement aggregates item quantities moved for one product in a range.
type Movement struct {
	PurchasedQty float64
	SoldQty      float64
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
