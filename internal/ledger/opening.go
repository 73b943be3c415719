// Package ledger reconstructs account statements from the raw event
// streams. Balances are derived quantities: every figure here is recomputed
// from events on demand, never read from a stored running total.
package ledger

import (
	"context"
	"time"

	"github.com/retailbooks/retailbooks/internal/store"
)

// Calculator computes opening balances by summing all qualifying events
// strictly before a cutoff date. Empty history yields zero, never an error.
type Calculator struct {
	store store.Store
}

// NewCalculator constructs a Calculator.
func NewCalculator(st store.Store) *Calculator {
	return &Calculator{store: st}
}

// dayBefore returns the inclusive upper bound for "strictly before cutoff".
func dayBefore(cutoff time.Time) time.Time {
	return cutoff.AddDate(0, 0, -1)
}

// CustomerOpening returns the customer balance immediately before cutoff:
// total billed minus payments received and credit notes issued.
func (c *Calculator) CustomerOpening(ctx context.Context, customerID int64, cutoff time.Time) (float64, error) {
	sales, err := c.store.SalesByCustomer(ctx, customerID, time.Time{}, dayBefore(cutoff))
	if err != nil {
		return 0, err
	}
	var balance float64
	for _, s := range sales {
		balance += s.TotalAmount
	}

	txns, err := c.store.TransactionsByEntity(ctx, store.EntityCustomer, customerID, time.Time{}, dayBefore(cutoff))
	if err != nil {
		return 0, err
	}
	for _, t := range txns {
		switch t.Type {
		case store.PaymentIn, store.CreditNote:
			balance -= t.Amount
		}
	}
	return balance, nil
}

// SupplierOpening returns the supplier balance immediately before cutoff:
// total billed by the supplier minus payments made and debit notes issued.
func (c *Calculator) SupplierOpening(ctx context.Context, supplierID int64, cutoff time.Time) (float64, error) {
	purchases, err := c.store.PurchasesBySupplier(ctx, supplierID, time.Time{}, dayBefore(cutoff))
	if err != nil {
		return 0, err
	}
	var balance float64
	for _, p := range purchases {
		balance += p.TotalAmount
	}

	txns, err := c.store.TransactionsByEntity(ctx, store.EntitySupplier, supplierID, time.Time{}, dayBefore(cutoff))
	if err != nil {
		return 0, err
	}
	for _, t := range txns {
		switch t.Type {
		case store.PaymentOut, store.DebitNote:
			balance -= t.Amount
		}
	}
	return balance, nil
}

// PoolOpening returns the cash or bank pool balance immediately before
// cutoff: receipts minus payments minus expenses, restricted to payment
// modes belonging to the pool.
func (c *Calculator) PoolOpening(ctx context.Context, bucket store.ModeBucket, cutoff time.Time) (float64, error) {
	txns, err := c.store.TransactionsInRange(ctx, time.Time{}, dayBefore(cutoff))
	if err != nil {
		return 0, err
	}
	var balance float64
	for _, t := range txns {
		b, ok := store.BucketForMode(t.PaymentMode)
		if !ok || b != bucket {
			continue
		}
		switch t.Type {
		case store.PaymentIn:
			balance += t.Amount
		case store.PaymentOut:
			balance -= t.Amount
		}
	}

	expenses, err := c.store.ExpensesInRange(ctx, time.Time{}, dayBefore(cutoff))
	if err != nil {
		return 0, err
	}
	for _, e := range expenses {
		if b, ok := store.BucketForMode(e.PaymentMode); ok && b == bucket {
			balance -= e.Amount
		}
	}
	return balance, nil
}
