// Package gst categorizes sale and note history into the statutory GST
// filing buckets: B2B, B2C large and small, HSN summary, credit/debit
// notes and nil-rated supplies.
package gst

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailbooks/retailbooks/internal/store"
	"github.com/retailbooks/retailbooks/internal/tax"
)

// b2clThreshold is the statutory invoice value above which an unregistered
// interstate sale is reported individually instead of aggregated.
const b2clThreshold = 250000

// SupplyType labels a nil-rated aggregate row.
type SupplyType string

const (
	SupplyIntrastate SupplyType = "intrastate"
	SupplyInterstate SupplyType = "interstate"
)

// InvoiceLine is one itemized tax line inside a reported invoice.
type InvoiceLine struct {
	GSTRate      float64 `json:"gst_rate"`
	TaxableValue float64 `json:"taxable_value"`
	IGST         float64 `json:"igst"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
}

// B2BInvoice is an invoice reported under a registered recipient.
type B2BInvoice struct {
	InvoiceNo     string        `json:"invoice_no"`
	Date          time.Time     `json:"date"`
	Value         float64       `json:"value"`
	PlaceOfSupply string        `json:"place_of_supply"`
	ReverseCharge bool          `json:"reverse_charge"`
	Items         []InvoiceLine `json:"items"`
}

// B2BParty groups invoices by recipient GSTIN.
type B2BParty struct {
	GSTIN    string       `json:"gstin"`
	Invoices []B2BInvoice `json:"invoices"`
}

// B2CLInvoice is a large unregistered interstate sale, one row per invoice.
type B2CLInvoice struct {
	InvoiceNo     string    `json:"invoice_no"`
	Date          time.Time `json:"date"`
	PlaceOfSupply string    `json:"place_of_supply"`
	Value         float64   `json:"value"`
	TaxableValue  float64   `json:"taxable_value"`
	IGST          float64   `json:"igst"`
}

// B2CSRow is a small-sale aggregate keyed by place of supply and rate.
// Individual invoices are not retained.
type B2CSRow struct {
	PlaceOfSupply string  `json:"place_of_supply"`
	GSTRate       float64 `json:"gst_rate"`
	TaxableValue  float64 `json:"taxable_value"`
	IGST          float64 `json:"igst"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
}

// HSNRow aggregates rated lines by tariff code and description.
type HSNRow struct {
	HSNCode      string  `json:"hsn_code"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	TaxableValue float64 `json:"taxable_value"`
	IGST         float64 `json:"igst"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
}

// HSNSection wraps the HSN rows in the filing envelope shape.
type HSNSection struct {
	Data []HSNRow `json:"data"`
}

// NoteRow is a credit or debit note entry. GSTIN is set only on flattened
// registered-recipient rows.
type NoteRow struct {
	GSTIN        string    `json:"gstin,omitempty"`
	NoteNo       string    `json:"note_no"`
	Date         time.Time `json:"date"`
	Type         string    `json:"type"`
	Value        float64   `json:"value"`
	TaxableValue float64   `json:"taxable_value"`
	TaxAmount    float64   `json:"tax_amount"`
	IGST         float64   `json:"igst"`
	CGST         float64   `json:"cgst"`
	SGST         float64   `json:"sgst"`
}

// CDNRParty groups notes issued to one registered recipient.
type CDNRParty struct {
	GSTIN string    `json:"gstin"`
	Notes []NoteRow `json:"notes"`
}

// NilRow aggregates zero-rated supply by supply type.
type NilRow struct {
	SupplyType SupplyType `json:"supply_type"`
	Value      float64    `json:"value"`
}

// NilSection wraps nil-rated rows in the filing envelope shape.
type NilSection struct {
	Inv []NilRow `json:"inv"`
}

// Filing is the full periodic GST filing report.
type Filing struct {
	B2B   []B2BParty    `json:"b2b"`
	B2CL  []B2CLInvoice `json:"b2cl"`
	B2CS  []B2CSRow     `json:"b2cs"`
	HSN   HSNSection    `json:"hsn"`
	CDNR  []CDNRParty   `json:"cdnr"`
	CDNUR []NoteRow     `json:"cdnur"`
	Nil   NilSection    `json:"nil"`
}

// Input carries the pre-fetched period data the categorizer works over.
type Input struct {
	Shop      store.ShopConfig
	Sales     []store.Sale
	Customers map[int64]store.Customer
	Products  map[int64]store.Product
	Notes     []store.Transaction
}

// interstate reports whether the supply leaves the shop's state. An absent
// customer state counts as same-state supply.
func interstate(shopState, customerState string) bool {
	customerState = strings.TrimSpace(customerState)
	if customerState == "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(shopState), customerState)
}

type b2csKey struct {
	pos  string
	rate float64
}

type hsnKey struct {
	code string
	desc string
}

type ratedLine struct {
	rate    float64
	taxable decimal.Decimal
	heads   tax.Heads
}

// BuildFiling routes every sale and note into its statutory bucket. All
// amounts are rounded to two decimals only at the moment they enter the
// output structure.
func BuildFiling(in Input) *Filing {
	filing := &Filing{
		B2B:   []B2BParty{},
		B2CL:  []B2CLInvoice{},
		B2CS:  []B2CSRow{},
		HSN:   HSNSection{Data: []HSNRow{}},
		CDNR:  []CDNRParty{},
		CDNUR: []NoteRow{},
		Nil:   NilSection{Inv: []NilRow{}},
	}

	b2bByGSTIN := make(map[string][]B2BInvoice)
	b2csTaxable := make(map[b2csKey]decimal.Decimal)
	b2csHeads := make(map[b2csKey]tax.Heads)
	hsnAgg := make(map[hsnKey]*hsnAccumulator)
	nilTotals := map[SupplyType]decimal.Decimal{}

	for _, sale := range in.Sales {
		customer := in.Customers[sale.CustomerID]
		inter := interstate(in.Shop.State, customer.State)
		pos := customer.State
		if strings.TrimSpace(pos) == "" {
			pos = in.Shop.State
		}

		invoiceValue := decimal.Zero
		invoiceTaxable := decimal.Zero
		invoiceIGST := decimal.Zero
		var lines []InvoiceLine
		var rated []ratedLine

		for _, item := range sale.Items {
			amounts := tax.ComputeLine(item.Rate, item.Quantity, item.DiscountPct, item.GSTRate, in.Shop.IsInclusive)
			heads := tax.Split(amounts.TaxAmount, inter)

			invoiceValue = invoiceValue.Add(amounts.TotalValue)
			invoiceTaxable = invoiceTaxable.Add(amounts.TaxableValue)
			invoiceIGST = invoiceIGST.Add(heads.IGST)

			lines = append(lines, InvoiceLine{
				GSTRate:      item.GSTRate,
				TaxableValue: tax.Round2(amounts.TaxableValue),
				IGST:         tax.Round2(heads.IGST),
				CGST:         tax.Round2(heads.CGST),
				SGST:         tax.Round2(heads.SGST),
			})

			if item.GSTRate == 0 {
				supply := SupplyIntrastate
				if inter {
					supply = SupplyInterstate
				}
				nilTotals[supply] = nilTotals[supply].Add(amounts.TotalValue)
				continue
			}

			// HSN summary is aggregated from raw items, independent of which
			// bucket the invoice lands in, so section totals always match.
			product := in.Products[item.ProductID]
			key := hsnKey{code: product.HSNCode, desc: product.Name}
			acc, ok := hsnAgg[key]
			if !ok {
				acc = &hsnAccumulator{}
				hsnAgg[key] = acc
			}
			acc.add(item.Quantity, amounts.TaxableValue, heads)

			rated = append(rated, ratedLine{rate: item.GSTRate, taxable: amounts.TaxableValue, heads: heads})
		}

		switch {
		case customer.Registered():
			b2bByGSTIN[customer.GSTIN] = append(b2bByGSTIN[customer.GSTIN], B2BInvoice{
				InvoiceNo:     sale.ReferenceNo,
				Date:          sale.Date,
				Value:         tax.Round2(invoiceValue),
				PlaceOfSupply: pos,
				ReverseCharge: sale.IsReverseCharge,
				Items:         lines,
			})
		case inter && invoiceValue.GreaterThan(decimal.NewFromInt(b2clThreshold)):
			filing.B2CL = append(filing.B2CL, B2CLInvoice{
				InvoiceNo:     sale.ReferenceNo,
				Date:          sale.Date,
				PlaceOfSupply: pos,
				Value:         tax.Round2(invoiceValue),
				TaxableValue:  tax.Round2(invoiceTaxable),
				IGST:          tax.Round2(invoiceIGST),
			})
		default:
			for _, line := range rated {
				key := b2csKey{pos: pos, rate: line.rate}
				b2csTaxable[key] = b2csTaxable[key].Add(line.taxable)
				h := b2csHeads[key]
				h.IGST = h.IGST.Add(line.heads.IGST)
				h.CGST = h.CGST.Add(line.heads.CGST)
				h.SGST = h.SGST.Add(line.heads.SGST)
				b2csHeads[key] = h
			}
		}
	}

	for gstin, invoices := range b2bByGSTIN {
		filing.B2B = append(filing.B2B, B2BParty{GSTIN: gstin, Invoices: invoices})
	}
	sort.Slice(filing.B2B, func(i, j int) bool { return filing.B2B[i].GSTIN < filing.B2B[j].GSTIN })

	for key, taxable := range b2csTaxable {
		heads := b2csHeads[key]
		filing.B2CS = append(filing.B2CS, B2CSRow{
			PlaceOfSupply: key.pos,
			GSTRate:       key.rate,
			TaxableValue:  tax.Round2(taxable),
			IGST:          tax.Round2(heads.IGST),
			CGST:          tax.Round2(heads.CGST),
			SGST:          tax.Round2(heads.SGST),
		})
	}
	sort.Slice(filing.B2CS, func(i, j int) bool {
		if filing.B2CS[i].PlaceOfSupply != filing.B2CS[j].PlaceOfSupply {
			return filing.B2CS[i].PlaceOfSupply < filing.B2CS[j].PlaceOfSupply
		}
		return filing.B2CS[i].GSTRate < filing.B2CS[j].GSTRate
	})

	for key, acc := range hsnAgg {
		filing.HSN.Data = append(filing.HSN.Data, HSNRow{
			HSNCode:      key.code,
			Description:  key.desc,
			Quantity:     acc.quantity,
			TaxableValue: tax.Round2(acc.taxable),
			IGST:         tax.Round2(acc.igst),
			CGST:         tax.Round2(acc.cgst),
			SGST:         tax.Round2(acc.sgst),
		})
	}
	sort.Slice(filing.HSN.Data, func(i, j int) bool { return filing.HSN.Data[i].HSNCode < filing.HSN.Data[j].HSNCode })

	buildNotes(filing, in)

	for _, supply := range []SupplyType{SupplyIntrastate, SupplyInterstate} {
		if total, ok := nilTotals[supply]; ok {
			filing.Nil.Inv = append(filing.Nil.Inv, NilRow{SupplyType: supply, Value: tax.Round2(total)})
		}
	}

	return filing
}

// buildNotes buckets credit and debit notes by recipient registration. The
// tax figure is back-calculated from the stored gst amount, not re-derived
// from rates, because notes may reverse a bill only partially.
func buildNotes(filing *Filing, in Input) {
	cdnrByGSTIN := make(map[string][]NoteRow)

	for _, note := range in.Notes {
		if note.Type != store.CreditNote && note.Type != store.DebitNote {
			continue
		}
		if note.EntityType != store.EntityCustomer {
			continue
		}
		customer := in.Customers[note.EntityID]
		inter := interstate(in.Shop.State, customer.State)

		amount := decimal.NewFromFloat(note.Amount)
		gstAmount := decimal.NewFromFloat(note.GSTAmount)
		heads := tax.Split(gstAmount, inter)

		row := NoteRow{
			NoteNo:       note.ReferenceNo,
			Date:         note.Date,
			Type:         string(note.Type),
			Value:        tax.Round2(amount),
			TaxableValue: tax.Round2(amount.Sub(gstAmount)),
			TaxAmount:    tax.Round2(gstAmount),
			IGST:         tax.Round2(heads.IGST),
			CGST:         tax.Round2(heads.CGST),
			SGST:         tax.Round2(heads.SGST),
		}

		if customer.Registered() {
			cdnrByGSTIN[customer.GSTIN] = append(cdnrByGSTIN[customer.GSTIN], row)
		} else {
			filing.CDNUR = append(filing.CDNUR, row)
		}
	}

	for gstin, notes := range cdnrByGSTIN {
		filing.CDNR = append(filing.CDNR, CDNRParty{GSTIN: gstin, Notes: notes})
	}
	sort.Slice(filing.CDNR, func(i, j int) bool { return filing.CDNR[i].GSTIN < filing.CDNR[j].GSTIN })
}

type hsnAccumulator struct {
	quantity float64
	taxable  decimal.Decimal
	igst     decimal.Decimal
	cgst     decimal.Decimal
	sgst     decimal.Decimal
}

func (a *hsnAccumulator) add(qty float64, taxable decimal.Decimal, heads tax.Heads) {
	a.quantity += qty
	a.taxable = a.taxable.Add(taxable)
	a.igst = a.igst.Add(heads.IGST)
	a.cgst = a.cgst.Add(heads.CGST)
	a.sgst = a.sgst.Add(heads.SGST)
}
