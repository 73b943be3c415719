package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/retailbooks/retailbooks/internal/gst"
)

// WriteHSNCSV serialises the HSN summary section as CSV.
func WriteHSNCSV(w io.Writer, section gst.HSNSection) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"HSN", "Description", "Quantity", "Taxable Value", "IGST", "CGST", "SGST"}); err != nil {
		return err
	}
	for _, row := range section.Data {
		record := []string{
			row.HSNCode,
			row.Description,
			formatFloat(row.Quantity),
			formatFloat(row.TaxableValue),
			formatFloat(row.IGST),
			formatFloat(row.CGST),
			formatFloat(row.SGST),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
