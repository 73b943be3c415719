// Package store provides read-only typed access to the financial event
// streams the ledger and tax reporting engine is built on: sales,
// purchases, payments and notes, expenses and stock adjustments.
//
// Balances are never stored. Every account balance in the system is a
// derived quantity recomputed from these events, so the adapters here are
// strictly read-only.
package store

import (
	"strings"
	"time"
)

// DocumentStatus marks the lifecycle state of an event row. Cancelled and
// deleted documents are excluded from all ledger math.
type DocumentStatus string

const (
	StatusActive    DocumentStatus = "active"
	StatusCompleted DocumentStatus = "completed"
	StatusCancelled DocumentStatus = "cancelled"
	StatusDeleted   DocumentStatus = "deleted"
)

// Countable reports whether the document participates in ledger math.
func (s DocumentStatus) Countable() bool {
	return s != StatusCancelled && s != StatusDeleted
}

// TransactionType enumerates payment and note documents.
type TransactionType string

const (
	PaymentIn  TransactionType = "payment_in"
	PaymentOut TransactionType = "payment_out"
	CreditNote TransactionType = "credit_note"
	DebitNote  TransactionType = "debit_note"
)

// BillType identifies the document a transaction settles.
type BillType string

const (
	BillSale     BillType = "sale"
	BillPurchase BillType = "purchase"
)

// EntityType identifies the counterparty of a transaction.
type EntityType string

const (
	EntityCustomer EntityType = "customer"
	EntitySupplier EntityType = "supplier"
)

// ModeBucket classifies payment modes into the cash or bank pool.
type ModeBucket string

const (
	ModeCash ModeBucket = "cash"
	ModeBank ModeBucket = "bank"
)

// BucketForMode maps a raw payment mode string onto its pool. The match is
// case-insensitive; unrecognised modes fall outside both pools.
func BucketForMode(mode string) (ModeBucket, bool) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "cash":
		return ModeCash, true
	case "upi", "card", "bank_transfer", "bank":
		return ModeBank, true
	default:
		return "", false
	}
}

// SaleItem is one line of a sale invoice.
type SaleItem struct {
	ProductID   int64
	Quantity    float64
	Rate        float64
	DiscountPct float64
	GSTRate     float64
}

// Sale is a sale invoice header with its line items.
type Sale struct {
	ID              int64
	CustomerID      int64 // 0 for walk-in sales
	ReferenceNo     string
	Date            time.Time
	TotalAmount     float64
	PaidAmount      float64
	Status          DocumentStatus
	IsQuote         bool
	IsReverseCharge bool
	Items           []SaleItem
}

// PurchaseItem is one line of a purchase bill.
type PurchaseItem struct {
	ProductID   int64
	Quantity    float64
	Rate        float64
	DiscountPct float64
	GSTRate     float64
}

// Purchase is a purchase bill header with its line items.
type Purchase struct {
	ID          int64
	SupplierID  int64
	ReferenceNo string
	Date        time.Time
	TotalAmount float64
	PaidAmount  float64
	Status      DocumentStatus
	Items       []PurchaseItem
}

// Transaction is a payment or a credit/debit note.
type Transaction struct {
	ID          int64
	Type        TransactionType
	BillID      int64 // 0 when not linked to a bill
	BillType    BillType
	EntityID    int64
	EntityType  EntityType
	Date        time.Time
	Amount      float64
	GSTAmount   float64
	PaymentMode string
	ReferenceNo string
	Note        string
	Status      DocumentStatus
}

// Expense is a cash-only outgoing without a counterparty account.
type Expense struct {
	ID          int64
	Date        time.Time
	Category    string
	Amount      float64
	PaymentMode string
	Status      DocumentStatus
}

// StockAdjustment records a manual quantity correction. The effective
// movement is always NewQuantity - OldQuantity; no separate intent field
// exists.
type StockAdjustment struct {
	ID          int64
	ProductID   int64
	OldQuantity float64
	NewQuantity float64
	Date        time.Time
	Category    string
}

// Delta returns the signed quantity change of the adjustment.
func (a StockAdjustment) Delta() float64 {
	return a.NewQuantity - a.OldQuantity
}

// Customer master record, as consumed by ledgers and tax filing.
type Customer struct {
	ID    int64
	Name  string
	GSTIN string
	State string
}

// Registered reports whether the customer carries a GSTIN.
func (c Customer) Registered() bool {
	return strings.TrimSpace(c.GSTIN) != ""
}

// Supplier master record.
type Supplier struct {
	ID    int64
	Name  string
	GSTIN string
	State string
}

// Product master record. Quantity is the current on-hand figure and the
// only authoritative stock anchor point.
type Product struct {
	ID       int64
	Name     string
	HSNCode  string
	GSTRate  float64
	Quantity float64
	Active   bool
}

// ShopConfig holds the registration details tax filing depends on.
type ShopConfig struct {
	GSTIN       string
	State       string
	IsInclusive bool
}

// Configured reports whether the mandatory filing fields are present.
func (c ShopConfig) Configured() bool {
	return strings.TrimSpace(c.GSTIN) != "" && strings.TrimSpace(c.State) != ""
}
