package perf

import (
	"fmt"
	"testing"
	"time"

	"github.com/retailbooks/retailbooks/internal/gst"
	"github.com/retailbooks/retailbooks/internal/store"
	_ "github.com/retailbooks/retailbooks/testing"
)

// buildInput fabricates a month of invoice history at the given volume.
func buildInput(invoices int) gst.Input {
	in := gst.Input{
		Shop:      store.ShopConfig{GSTIN: "29ABCDE1234F1Z5", State: "Karnataka"},
		Customers: map[int64]store.Customer{},
		Products:  map[int64]store.Product{},
	}
	for p := int64(1); p <= 20; p++ {
		in.Products[p] = store.Product{ID: p, Name: fmt.Sprintf("Product %d", p), HSNCode: fmt.Sprintf("34%02d", p)}
	}
	states := []string{"Karnataka", "Maharashtra", "Kerala", "Tamil Nadu"}
	for c := int64(1); c <= 50; c++ {
		customer := store.Customer{ID: c, Name: fmt.Sprintf("Customer %d", c), State: states[c%4]}
		if c%5 == 0 {
			customer.GSTIN = fmt.Sprintf("27AAAAA%04dA1Z5", c)
		}
		in.Customers[c] = customer
	}

	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < invoices; i++ {
		sale := store.Sale{
			ID:          int64(i + 1),
			CustomerID:  int64(i%50 + 1),
			ReferenceNo: fmt.Sprintf("INV-%d", i+1),
			Date:        base.AddDate(0, 0, i%28),
			Status:      store.StatusActive,
		}
		for item := 0; item < 3; item++ {
			sale.Items = append(sale.Items, store.SaleItem{
				ProductID: int64((i+item)%20 + 1),
				Quantity:  float64(item + 1),
				Rate:      99.5,
				GSTRate:   []float64{0, 5, 12, 18}[(i+item)%4],
			})
		}
		in.Sales = append(in.Sales, sale)
	}
	return in
}

func BenchmarkBuildFiling(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		in := buildInput(size)
		b.Run(fmt.Sprintf("invoices_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if filing := gst.BuildFiling(in); filing == nil {
					b.Fatal("nil filing")
				}
			}
		})
	}
}
