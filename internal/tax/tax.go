// Package tax implements the line-level GST computation used by invoices
// and tax filing reports. All arithmetic is decimal; rounding happens only
// at presentation boundaries, never inside the kernel.
package tax

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Amounts is the computed value breakdown for a single line item.
// TaxableValue + TaxAmount always equals TotalValue exactly.
type Amounts struct {
	TaxableValue decimal.Decimal
	TaxAmount    decimal.Decimal
	TotalValue   decimal.Decimal
}

// Heads splits a tax amount across the GST tax heads. Interstate supplies
// carry the full amount as IGST; intrastate supplies split it evenly
// between CGST and SGST.
type Heads struct {
	IGST decimal.Decimal
	CGST decimal.Decimal
	SGST decimal.Decimal
}

// ComputeLine derives taxable value, tax amount and total value for one
// line item. When inclusive is true the unit rate already contains GST and
// the taxable value is backed out of it; otherwise tax is added on top.
func ComputeLine(rate, quantity, discountPct, gstRate float64, inclusive bool) Amounts {
	base := decimal.NewFromFloat(rate).
		Mul(decimal.NewFromFloat(quantity)).
		Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discountPct).Div(hundred)))

	gst := decimal.NewFromFloat(gstRate)

	var taxable, taxAmt decimal.Decimal
	if inclusive {
		taxable = base.Div(decimal.NewFromInt(1).Add(gst.Div(hundred)))
		// Derive tax as the complement so the identity holds exactly even
		// when the division is not finite.
		taxAmt = base.Sub(taxable)
		return Amounts{TaxableValue: taxable, TaxAmount: taxAmt, TotalValue: base}
	}

	taxable = base
	taxAmt = taxable.Mul(gst).Div(hundred)
	return Amounts{TaxableValue: taxable, TaxAmount: taxAmt, TotalValue: taxable.Add(taxAmt)}
}

// Split assigns a tax amount to heads based on supply type.
func Split(taxAmount decimal.Decimal, interstate bool) Heads {
	if interstate {
		return Heads{IGST: taxAmount}
	}
	half := taxAmount.Div(decimal.NewFromInt(2))
	return Heads{CGST: half, SGST: half}
}

// Round2 rounds a decimal amount to two places and returns it as a float
// for report output. Callers use it only when inserting into an output
// structure.
func Round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
