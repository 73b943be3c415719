package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/retailbooks/retailbooks/internal/period"
	"github.com/retailbooks/retailbooks/internal/store"
)

// Service builds merged account statements over the event store.
type Service struct {
	store  store.Store
	calc   *Calculator
	logger *slog.Logger
}

// NewService constructs the ledger service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, calc: NewCalculator(st), logger: logger}
}

// Opening exposes the calculator for callers that only need a balance.
func (s *Service) Opening() *Calculator {
	return s.calc
}

// CustomerStatement builds the merged ledger for one customer. A missing
// customer surfaces shared.ErrNotFound; a customer with no history returns
// an empty statement.
func (s *Service) CustomerStatement(ctx context.Context, customerID int64, rng period.Range) (Statement, error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return Statement{}, err
	}

	opening, err := s.calc.CustomerOpening(ctx, customerID, rng.Start)
	if err != nil {
		return Statement{}, err
	}

	txns, err := s.store.TransactionsByEntity(ctx, store.EntityCustomer, customerID, rng.Start, rng.End)
	if err != nil {
		return Statement{}, err
	}

	sales, err := s.store.SalesByCustomer(ctx, customerID, rng.Start, rng.End)
	if err != nil {
		return Statement{}, err
	}

	bills := make([]Row, 0, len(sales))
	billDates := make(map[billKey]time.Time, len(sales))
	for _, sale := range sales {
		key := billKey{billID: sale.ID, billType: store.BillSale}
		billDates[key] = sale.Date
		bills = append(bills, Row{
			Date:        period.Truncate(sale.Date),
			RecordType:  RecordSale,
			ReferenceNo: sale.ReferenceNo,
			Credit:      sale.TotalAmount,
			Debit:       sameDayPaid(txns, key, sale.Date, store.PaymentIn),
			sourceID:    sale.ID,
		})
	}

	rows := mergeBills(bills, billDates, txns, func(t store.Transaction) (Row, bool) {
		switch t.Type {
		case store.PaymentIn, store.CreditNote:
			return Row{
				Date:        period.Truncate(t.Date),
				RecordType:  recordForTransaction(t.Type),
				ReferenceNo: t.ReferenceNo,
				Debit:       t.Amount,
				Note:        t.Note,
				sourceID:    t.ID,
			}, true
		}
		return Row{}, false
	})

	return Statement{OpeningBalance: opening, Rows: rows}, nil
}

// SupplierStatement builds the merged ledger for one supplier, mirroring
// the customer statement: purchases credit the account, payments out and
// debit notes reduce it.
func (s *Service) SupplierStatement(ctx context.Context, supplierID int64, rng period.Range) (Statement, error) {
	if _, err := s.store.GetSupplier(ctx, supplierID); err != nil {
		return Statement{}, err
	}

	opening, err := s.calc.SupplierOpening(ctx, supplierID, rng.Start)
	if err != nil {
		return Statement{}, err
	}

	txns, err := s.store.TransactionsByEntity(ctx, store.EntitySupplier, supplierID, rng.Start, rng.End)
	if err != nil {
		return Statement{}, err
	}

	purchases, err := s.store.PurchasesBySupplier(ctx, supplierID, rng.Start, rng.End)
	if err != nil {
		return Statement{}, err
	}

	bills := make([]Row, 0, len(purchases))
	billDates := make(map[billKey]time.Time, len(purchases))
	for _, p := range purchases {
		key := billKey{billID: p.ID, billType: store.BillPurchase}
		billDates[key] = p.Date
		bills = append(bills, Row{
			Date:        period.Truncate(p.Date),
			RecordType:  RecordPurchase,
			ReferenceNo: p.ReferenceNo,
			Credit:      p.TotalAmount,
			Debit:       sameDayPaid(txns, key, p.Date, store.PaymentOut),
			sourceID:    p.ID,
		})
	}

	rows := mergeBills(bills, billDates, txns, func(t store.Transaction) (Row, bool) {
		switch t.Type {
		case store.PaymentOut, store.DebitNote:
			return Row{
				Date:        period.Truncate(t.Date),
				RecordType:  recordForTransaction(t.Type),
				ReferenceNo: t.ReferenceNo,
				Debit:       t.Amount,
				Note:        t.Note,
				sourceID:    t.ID,
			}, true
		}
		return Row{}, false
	})

	return Statement{OpeningBalance: opening, Rows: rows}, nil
}

// CashBook builds the cash or bank pool statement. Receipts appear as
// debits and outgoings as credits, so the closing balance is
// opening + debits - credits.
func (s *Service) CashBook(ctx context.Context, bucket store.ModeBucket, rng period.Range) (Statement, error) {
	opening, err := s.calc.PoolOpening(ctx, bucket, rng.Start)
	if err != nil {
		return Statement{}, err
	}

	txns, err := s.store.TransactionsInRange(ctx, rng.Start, rng.End)
	if err != nil {
		return Statement{}, err
	}

	var rows []Row
	for _, t := range txns {
		b, ok := store.BucketForMode(t.PaymentMode)
		if !ok || b != bucket {
			continue
		}
		switch t.Type {
		case store.PaymentIn:
			rows = append(rows, Row{
				Date:        period.Truncate(t.Date),
				RecordType:  RecordPaymentIn,
				ReferenceNo: t.ReferenceNo,
				Debit:       t.Amount,
				Note:        t.Note,
				sourceID:    t.ID,
			})
		case store.PaymentOut:
			rows = append(rows, Row{
				Date:        period.Truncate(t.Date),
				RecordType:  RecordPaymentOut,
				ReferenceNo: t.ReferenceNo,
				Credit:      t.Amount,
				Note:        t.Note,
				sourceID:    t.ID,
			})
		}
	}

	expenses, err := s.store.ExpensesInRange(ctx, rng.Start, rng.End)
	if err != nil {
		return Statement{}, err
	}
	for _, e := range expenses {
		if b, ok := store.BucketForMode(e.PaymentMode); !ok || b != bucket {
			continue
		}
		rows = append(rows, Row{
			Date:       period.Truncate(e.Date),
			RecordType: RecordExpense,
			Credit:     e.Amount,
			Note:       e.Category,
			sourceID:   e.ID,
		})
	}

	sortRows(rows)
	return Statement{OpeningBalance: opening, Rows: rows}, nil
}

// Daybook merges every event stream for the period into one chronological
// list: sales, purchases, payments, notes and expenses. No opening balance
// applies; the daybook is a journal view, not an account.
func (s *Service) Daybook(ctx context.Context, rng period.Range) ([]Row, error) {
	var rows []Row

	sales, err := s.store.SalesInRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		rows = append(rows, Row{
			Date:        period.Truncate(sale.Date),
			RecordType:  RecordSale,
			ReferenceNo: sale.ReferenceNo,
			Credit:      sale.TotalAmount,
			sourceID:    sale.ID,
		})
	}

	purchases, err := s.store.PurchasesInRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	for _, p := range purchases {
		rows = append(rows, Row{
			Date:        period.Truncate(p.Date),
			RecordType:  RecordPurchase,
			ReferenceNo: p.ReferenceNo,
			Debit:       p.TotalAmount,
			sourceID:    p.ID,
		})
	}

	txns, err := s.store.TransactionsInRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		row := Row{
			Date:        period.Truncate(t.Date),
			RecordType:  recordForTransaction(t.Type),
			ReferenceNo: t.ReferenceNo,
			Note:        t.Note,
			sourceID:    t.ID,
		}
		switch t.Type {
		case store.PaymentIn, store.DebitNote:
			row.Debit = t.Amount
		case store.PaymentOut, store.CreditNote:
			row.Credit = t.Amount
		}
		rows = append(rows, row)
	}

	expenses, err := s.store.ExpensesInRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		rows = append(rows, Row{
			Date:       period.Truncate(e.Date),
			RecordType: RecordExpense,
			Credit:     e.Amount,
			Note:       e.Category,
			sourceID:   e.ID,
		})
	}

	sortRows(rows)
	return rows, nil
}
