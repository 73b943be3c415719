// Package export renders filing reports to spreadsheet and CSV formats
// for upload into the GST offline filing tools.
package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/retailbooks/retailbooks/internal/gst"
)

const dateFormat = "02-01-2006"

// WriteFilingXLSX renders the filing as a workbook with one sheet per
// statutory section.
func WriteFilingXLSX(w io.Writer, filing *gst.Filing) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeB2B(f, filing.B2B); err != nil {
		return err
	}
	if err := writeB2CL(f, filing.B2CL); err != nil {
		return err
	}
	if err := writeB2CS(f, filing.B2CS); err != nil {
		return err
	}
	if err := writeHSN(f, filing.HSN); err != nil {
		return err
	}
	if err := writeNotes(f, "cdnr", flattenCDNR(filing.CDNR)); err != nil {
		return err
	}
	if err := writeNotes(f, "cdnur", filing.CDNUR); err != nil {
		return err
	}
	if err := writeNil(f, filing.Nil); err != nil {
		return err
	}

	// excelize always creates a default sheet; the sections replace it.
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func newSheet(f *excelize.File, name string, header []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return f.SetSheetRow(name, "A1", &header)
}

func setRow(f *excelize.File, sheet string, rowIdx int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeB2B(f *excelize.File, parties []gst.B2BParty) error {
	if err := newSheet(f, "b2b", []string{"GSTIN", "Invoice No", "Date", "Place Of Supply", "Reverse Charge", "Invoice Value", "Rate", "Taxable Value", "IGST", "CGST", "SGST"}); err != nil {
		return err
	}
	row := 2
	for _, party := range parties {
		for _, inv := range party.Invoices {
			for _, line := range inv.Items {
				err := setRow(f, "b2b", row, []any{
					party.GSTIN, inv.InvoiceNo, inv.Date.Format(dateFormat), inv.PlaceOfSupply,
					boolYN(inv.ReverseCharge), inv.Value, line.GSTRate, line.TaxableValue,
					line.IGST, line.CGST, line.SGST,
				})
				if err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}

func writeB2CL(f *excelize.File, invoices []gst.B2CLInvoice) error {
	if err := newSheet(f, "b2cl", []string{"Invoice No", "Date", "Place Of Supply", "Invoice Value", "Taxable Value", "IGST"}); err != nil {
		return err
	}
	for i, inv := range invoices {
		err := setRow(f, "b2cl", i+2, []any{
			inv.InvoiceNo, inv.Date.Format(dateFormat), inv.PlaceOfSupply,
			inv.Value, inv.TaxableValue, inv.IGST,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeB2CS(f *excelize.File, rows []gst.B2CSRow) error {
	if err := newSheet(f, "b2cs", []string{"Place Of Supply", "Rate", "Taxable Value", "IGST", "CGST", "SGST"}); err != nil {
		return err
	}
	for i, r := range rows {
		err := setRow(f, "b2cs", i+2, []any{
			r.PlaceOfSupply, r.GSTRate, r.TaxableValue, r.IGST, r.CGST, r.SGST,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeHSN(f *excelize.File, section gst.HSNSection) error {
	if err := newSheet(f, "hsn", []string{"HSN", "Description", "Quantity", "Taxable Value", "IGST", "CGST", "SGST"}); err != nil {
		return err
	}
	for i, r := range section.Data {
		err := setRow(f, "hsn", i+2, []any{
			r.HSNCode, r.Description, r.Quantity, r.TaxableValue, r.IGST, r.CGST, r.SGST,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeNotes(f *excelize.File, sheet string, notes []gst.NoteRow) error {
	if err := newSheet(f, sheet, []string{"GSTIN", "Note No", "Date", "Type", "Value", "Taxable Value", "Tax", "IGST", "CGST", "SGST"}); err != nil {
		return err
	}
	for i, n := range notes {
		err := setRow(f, sheet, i+2, []any{
			n.GSTIN, n.NoteNo, n.Date.Format(dateFormat), n.Type,
			n.Value, n.TaxableValue, n.TaxAmount, n.IGST, n.CGST, n.SGST,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeNil(f *excelize.File, section gst.NilSection) error {
	if err := newSheet(f, "nil", []string{"Supply Type", "Value"}); err != nil {
		return err
	}
	for i, r := range section.Inv {
		if err := setRow(f, "nil", i+2, []any{string(r.SupplyType), r.Value}); err != nil {
			return err
		}
	}
	return nil
}

func flattenCDNR(parties []gst.CDNRParty) []gst.NoteRow {
	var out []gst.NoteRow
	for _, party := range parties {
		for _, note := range party.Notes {
			note.GSTIN = party.GSTIN
			out = append(out, note)
		}
	}
	return out
}

func boolYN(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}
