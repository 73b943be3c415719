package ledger

import (
	"sort"
	"time"

	"github.com/retailbooks/retailbooks/internal/store"
)

// RecordType classifies a statement row. The set is closed; consumers can
// switch over it exhaustively.
type RecordType string

const (
	RecordSale       RecordType = "sale"
	RecordPurchase   RecordType = "purchase"
	RecordPaymentIn  RecordType = "payment_in"
	RecordPaymentOut RecordType = "payment_out"
	RecordCreditNote RecordType = "credit_note"
	RecordDebitNote  RecordType = "debit_note"
	RecordExpense    RecordType = "expense"
)

func recordForTransaction(t store.TransactionType) RecordType {
	switch t {
	case store.PaymentIn:
		return RecordPaymentIn
	case store.PaymentOut:
		return RecordPaymentOut
	case store.CreditNote:
		return RecordCreditNote
	case store.DebitNote:
		return RecordDebitNote
	}
	return RecordType(t)
}

// Row is one displayed line in a chronological account statement.
type Row struct {
	Date        time.Time  `json:"date"`
	RecordType  RecordType `json:"record_type"`
	ReferenceNo string     `json:"reference_no"`
	Debit       float64    `json:"debit"`
	Credit      float64    `json:"credit"`
	Note        string     `json:"note,omitempty"`

	// sourceID breaks sort ties so repeated builds stay stable.
	sourceID int64
}

// Statement is a merged account ledger for one period.
type Statement struct {
	OpeningBalance float64 `json:"opening_balance"`
	Rows           []Row   `json:"rows"`
}

// ClosingBalance folds the rows onto the opening figure. Credit increases
// the balance for counterparty accounts (what the account owes the shop or
// the shop owes it); the cash book uses the debit-increases orientation and
// overrides this at the service layer.
func (s Statement) ClosingBalance() float64 {
	balance := s.OpeningBalance
	for _, r := range s.Rows {
		balance += r.Credit - r.Debit
	}
	return balance
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// billKey identifies a settled bill for same-day payment deduplication.
type billKey struct {
	billID   int64
	billType store.BillType
}

// mergeBills folds bill rows and secondary transaction rows into one
// chronologically ordered statement body.
//
// A payment recorded against a bill on the bill's own date is represented
// once, folded into the bill row; the standalone payment row is dropped.
// Payments dated after their bill remain their own rows.
func mergeBills(bills []Row, billDates map[billKey]time.Time, txns []store.Transaction, secondary func(store.Transaction) (Row, bool)) []Row {
	rows := make([]Row, 0, len(bills)+len(txns))
	rows = append(rows, bills...)

	for _, t := range txns {
		if t.BillID != 0 && (t.Type == store.PaymentIn || t.Type == store.PaymentOut) {
			if billDate, ok := billDates[billKey{billID: t.BillID, billType: t.BillType}]; ok && sameDay(billDate, t.Date) {
				continue
			}
		}
		row, ok := secondary(t)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	sortRows(rows)
	return rows
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !sameDay(rows[i].Date, rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].sourceID < rows[j].sourceID
	})
}

// sameDayPaid sums payments settled against the given bill on its own date.
func sameDayPaid(txns []store.Transaction, key billKey, billDate time.Time, payType store.TransactionType) float64 {
	var paid float64
	for _, t := range txns {
		if t.Type != payType || t.BillID != key.billID || t.BillType != key.billType {
			continue
		}
		if sameDay(t.Date, billDate) {
			paid += t.Amount
		}
	}
	return paid
}
