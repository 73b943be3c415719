package ledger

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/retailbooks/retailbooks/internal/period"
	"github.com/retailbooks/retailbooks/internal/shared"
	"github.com/retailbooks/retailbooks/internal/store"
	_ "github.com/retailbooks/retailbooks/testing"
)

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func janRange(t *testing.T) period.Range {
	t.Helper()
	rng, err := period.Resolve(period.Spec{Start: ptr(day("2024-01-01")), End: ptr(day("2024-01-31"))})
	require.NoError(t, err)
	return rng
}

func ptr[T any](v T) *T { return &v }

func newFixture() *store.Memory {
	m := store.NewMemory()
	m.Customers[1] = store.Customer{ID: 1, Name: "Asha Traders"}
	m.Suppliers[7] = store.Supplier{ID: 7, Name: "Bulk Supply Co"}
	return m
}

func newService(m *store.Memory) *Service {
	return NewService(m, slog.Default())
}

func TestCustomerStatementSameDayPaymentFolded(t *testing.T) {
	m := newFixture()
	m.Sales = []store.Sale{{
		ID: 10, CustomerID: 1, ReferenceNo: "INV-1", Date: day("2024-01-10"),
		TotalAmount: 1000, PaidAmount: 1000, Status: store.StatusActive,
	}}
	m.Txns = []store.Transaction{{
		ID: 20, Type: store.PaymentIn, BillID: 10, BillType: store.BillSale,
		EntityID: 1, EntityType: store.EntityCustomer, Date: day("2024-01-10"),
		Amount: 1000, Status: store.StatusActive,
	}}

	stmt, err := newService(m).CustomerStatement(context.Background(), 1, janRange(t))
	require.NoError(t, err)

	require.Len(t, stmt.Rows, 1, "same-day payment must not appear as its own row")
	row := stmt.Rows[0]
	require.Equal(t, RecordSale, row.RecordType)
	require.Equal(t, 1000.0, row.Credit)
	require.Equal(t, 1000.0, row.Debit)
	require.Equal(t, 0.0, stmt.ClosingBalance())
}

func TestCustomerStatementLaterPaymentKeepsOwnRow(t *testing.T) {
	m := newFixture()
	m.Sales = []store.Sale{{
		ID: 10, CustomerID: 1, ReferenceNo: "INV-1", Date: day("2024-01-10"),
		TotalAmount: 1000, Status: store.StatusActive,
	}}
	m.Txns = []store.Transaction{{
		ID: 20, Type: store.PaymentIn, BillID: 10, BillType: store.BillSale,
		EntityID: 1, EntityType: store.EntityCustomer, Date: day("2024-01-15"),
		Amount: 600, Status: store.StatusActive,
	}}

	stmt, err := newService(m).CustomerStatement(context.Background(), 1, janRange(t))
	require.NoError(t, err)

	require.Len(t, stmt.Rows, 2)
	require.Equal(t, RecordSale, stmt.Rows[0].RecordType)
	require.Equal(t, 0.0, stmt.Rows[0].Debit, "no same-day settlement on the sale row")
	require.Equal(t, RecordPaymentIn, stmt.Rows[1].RecordType)
	require.Equal(t, 600.0, stmt.Rows[1].Debit)
	require.Equal(t, 400.0, stmt.ClosingBalance())
}

func TestCustomerOpeningExcludesCutoffDate(t *testing.T) {
	m := newFixture()
	m.Sales = []store.Sale{
		{ID: 1, CustomerID: 1, Date: day("2023-12-20"), TotalAmount: 500, Status: store.StatusActive},
		{ID: 2, CustomerID: 1, Date: day("2024-01-01"), TotalAmount: 700, Status: store.StatusActive},
	}

	calc := NewCalculator(m)
	opening, err := calc.CustomerOpening(context.Background(), 1, day("2024-01-01"))
	require.NoError(t, err)
	require.Equal(t, 500.0, opening, "event dated on the cutoff must not leak into opening")
}

func TestOpeningBalanceAdditivity(t *testing.T) {
	m := newFixture()
	m.Sales = []store.Sale{
		{ID: 1, CustomerID: 1, Date: day("2023-11-05"), TotalAmount: 300, Status: store.StatusActive},
		{ID: 2, CustomerID: 1, Date: day("2023-12-12"), TotalAmount: 450, Status: store.StatusActive},
		{ID: 3, CustomerID: 1, Date: day("2024-01-08"), TotalAmount: 900, Status: store.StatusActive},
	}
	m.Txns = []store.Transaction{
		{ID: 11, Type: store.PaymentIn, EntityID: 1, EntityType: store.EntityCustomer, Date: day("2023-12-15"), Amount: 200, Status: store.StatusActive},
		{ID: 12, Type: store.CreditNote, EntityID: 1, EntityType: store.EntityCustomer, Date: day("2024-01-03"), Amount: 100, Status: store.StatusActive},
	}

	calc := NewCalculator(m)
	ctx := context.Background()

	d1, d2 := day("2023-12-01"), day("2024-02-01")
	openD1, err := calc.CustomerOpening(ctx, 1, d1)
	require.NoError(t, err)
	openD2, err := calc.CustomerOpening(ctx, 1, d2)
	require.NoError(t, err)

	// Net movement over [D1, D2) equals the statement rows for that window.
	rng, err := period.Resolve(period.Spec{Start: &d1, End: ptr(day("2024-01-31"))})
	require.NoError(t, err)
	stmt, err := newService(m).CustomerStatement(ctx, 1, rng)
	require.NoError(t, err)

	require.InDelta(t, openD1, stmt.OpeningBalance, 1e-9)
	net := sumCredits(stmt.Rows) - sumDebits(stmt.Rows)
	require.InDelta(t, openD2, openD1+net, 1e-9)
}

func TestCustomerStatementIdempotent(t *testing.T) {
	m := newFixture()
	m.Sales = []store.Sale{
		{ID: 1, CustomerID: 1, ReferenceNo: "INV-1", Date: day("2024-01-04"), TotalAmount: 250, Status: store.StatusActive},
		{ID: 2, CustomerID: 1, ReferenceNo: "INV-2", Date: day("2024-01-04"), TotalAmount: 300, Status: store.StatusActive},
	}
	m.Txns = []store.Transaction{
		{ID: 5, Type: store.PaymentIn, EntityID: 1, EntityType: store.EntityCustomer, Date: day("2024-01-04"), Amount: 50, Status: store.StatusActive},
	}

	svc := newService(m)
	first, err := svc.CustomerStatement(context.Background(), 1, janRange(t))
	require.NoError(t, err)
	second, err := svc.CustomerStatement(context.Background(), 1, janRange(t))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCustomerStatementNotFound(t *testing.T) {
	m := newFixture()
	_, err := newService(m).CustomerStatement(context.Background(), 99, janRange(t))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerStatementCancelledExcluded(t *testing.T) {
	m := newFixture()
	m.Sales = []store.Sale{
		{ID: 1, CustomerID: 1, Date: day("2024-01-04"), TotalAmount: 250, Status: store.StatusCancelled},
		{ID: 2, CustomerID: 1, Date: day("2024-01-05"), TotalAmount: 300, Status: store.StatusActive},
	}

	stmt, err := newService(m).CustomerStatement(context.Background(), 1, janRange(t))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 1)
	require.Equal(t, 300.0, stmt.Rows[0].Credit)
}

func TestSupplierStatementMirror(t *testing.T) {
	m := newFixture()
	m.Purchases = []store.Purchase{{
		ID: 30, SupplierID: 7, ReferenceNo: "PB-7", Date: day("2024-01-06"),
		TotalAmount: 5000, Status: store.StatusActive,
	}}
	m.Txns = []store.Transaction{
		{ID: 40, Type: store.PaymentOut, BillID: 30, BillType: store.BillPurchase,
			EntityID: 7, EntityType: store.EntitySupplier, Date: day("2024-01-06"), Amount: 2000, Status: store.StatusActive},
		{ID: 41, Type: store.DebitNote, EntityID: 7, EntityType: store.EntitySupplier,
			Date: day("2024-01-20"), Amount: 500, Status: store.StatusActive},
	}

	stmt, err := newService(m).SupplierStatement(context.Background(), 7, janRange(t))
	require.NoError(t, err)

	require.Len(t, stmt.Rows, 2)
	require.Equal(t, RecordPurchase, stmt.Rows[0].RecordType)
	require.Equal(t, 5000.0, stmt.Rows[0].Credit)
	require.Equal(t, 2000.0, stmt.Rows[0].Debit, "same-day settlement folded into the bill row")
	require.Equal(t, RecordDebitNote, stmt.Rows[1].RecordType)
	require.Equal(t, 2500.0, stmt.ClosingBalance())
}

func TestCashBookBuckets(t *testing.T) {
	m := newFixture()
	m.Txns = []store.Transaction{
		{ID: 1, Type: store.PaymentIn, EntityID: 1, EntityType: store.EntityCustomer, Date: day("2024-01-03"), Amount: 100, PaymentMode: "Cash", Status: store.StatusActive},
		{ID: 2, Type: store.PaymentIn, EntityID: 1, EntityType: store.EntityCustomer, Date: day("2024-01-04"), Amount: 250, PaymentMode: "UPI", Status: store.StatusActive},
		{ID: 3, Type: store.PaymentOut, EntityID: 7, EntityType: store.EntitySupplier, Date: day("2024-01-05"), Amount: 40, PaymentMode: "bank_transfer", Status: store.StatusActive},
	}
	m.Expenses = []store.Expense{
		{ID: 9, Date: day("2024-01-06"), Category: "rent", Amount: 30, PaymentMode: "cash", Status: store.StatusActive},
	}

	svc := newService(m)
	ctx := context.Background()

	cash, err := svc.CashBook(ctx, store.ModeCash, janRange(t))
	require.NoError(t, err)
	require.Len(t, cash.Rows, 2)
	require.Equal(t, 70.0, cash.OpeningBalance+sumDebits(cash.Rows)-sumCredits(cash.Rows))

	bank, err := svc.CashBook(ctx, store.ModeBank, janRange(t))
	require.NoError(t, err)
	require.Len(t, bank.Rows, 2)
	require.Equal(t, 210.0, bank.OpeningBalance+sumDebits(bank.Rows)-sumCredits(bank.Rows))
}

func TestPoolOpeningStrictlyBeforeCutoff(t *testing.T) {
	m := newFixture()
	m.Txns = []store.Transaction{
		{ID: 1, Type: store.PaymentIn, EntityID: 1, EntityType: store.EntityCustomer, Date: day("2023-12-30"), Amount: 500, PaymentMode: "cash", Status: store.StatusActive},
		{ID: 2, Type: store.PaymentOut, EntityID: 7, EntityType: store.EntitySupplier, Date: day("2023-12-31"), Amount: 120, PaymentMode: "cash", Status: store.StatusActive},
		{ID: 3, Type: store.PaymentIn, EntityID: 1, EntityType: store.EntityCustomer, Date: day("2024-01-01"), Amount: 999, PaymentMode: "cash", Status: store.StatusActive},
	}
	m.Expenses = []store.Expense{
		{ID: 4, Date: day("2023-12-31"), Category: "tea", Amount: 20, PaymentMode: "CASH", Status: store.StatusActive},
	}

	calc := NewCalculator(m)
	opening, err := calc.PoolOpening(context.Background(), store.ModeCash, day("2024-01-01"))
	require.NoError(t, err)
	require.Equal(t, 360.0, opening)
}

func TestDaybookMergesAllStreams(t *testing.T) {
	m := newFixture()
	m.Sales = []store.Sale{{ID: 1, CustomerID: 1, Date: day("2024-01-02"), TotalAmount: 100, Status: store.StatusActive}}
	m.Purchases = []store.Purchase{{ID: 2, SupplierID: 7, Date: day("2024-01-03"), TotalAmount: 200, Status: store.StatusActive}}
	m.Txns = []store.Transaction{{ID: 3, Type: store.PaymentIn, EntityID: 1, EntityType: store.EntityCustomer, Date: day("2024-01-04"), Amount: 50, Status: store.StatusActive}}
	m.Expenses = []store.Expense{{ID: 4, Date: day("2024-01-05"), Category: "fuel", Amount: 10, Status: store.StatusActive}}

	rows, err := newService(m).Daybook(context.Background(), janRange(t))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i := 1; i < len(rows); i++ {
		require.False(t, rows[i].Date.Before(rows[i-1].Date), "daybook must be chronological")
	}
}

func sumDebits(rows []Row) float64 {
	var total float64
	for _, r := range rows {
		total += r.Debit
	}
	return total
}

func sumCredits(rows []Row) float64 {
	var total float64
	for _, r := range rows {
		total += r.Credit
	}
	return total
}
