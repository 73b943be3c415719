package insights

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/retailbooks/retailbooks/internal/store"
	_ "github.com/retailbooks/retailbooks/testing"
)

var now = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func sale(id int64, daysAgo int, amount float64) store.Sale {
	return store.Sale{
		ID:          id,
		Date:        now.AddDate(0, 0, -daysAgo),
		TotalAmount: amount,
		Status:      store.StatusActive,
	}
}

func TestRegularCustomer(t *testing.T) {
	c := store.Customer{ID: 1, Name: "Asha"}
	got := Classify(c, []store.Sale{sale(1, 200, 5000), sale(2, 20, 3000)}, now)

	require.Equal(t, SegmentRegular, got.Segment)
	require.Equal(t, 8000.0, got.TotalRevenue)
	require.Equal(t, 2, got.SaleCount)
}

func TestHighSpenderIsVIP(t *testing.T) {
	c := store.Customer{ID: 1, Name: "Bharat"}
	got := Classify(c, []store.Sale{sale(1, 200, 60000), sale(2, 20, 50000)}, now)

	require.Equal(t, SegmentVIP, got.Segment)
	require.Equal(t, 110000.0, got.TotalRevenue)
}

func TestDormancyOverridesVIP(t *testing.T) {
	// A high spender whose last sale is older than the dormancy window is
	// reported dormant even though the revenue clears the VIP bar.
	c := store.Customer{ID: 1, Name: "Chitra"}
	got := Classify(c, []store.Sale{sale(1, 120, 150000)}, now)

	require.Equal(t, SegmentDormant, got.Segment)
	require.Equal(t, 150000.0, got.TotalRevenue)
}

func TestRecentFirstPurchaseIsNew(t *testing.T) {
	c := store.Customer{ID: 1, Name: "Dev"}
	got := Classify(c, []store.Sale{sale(1, 10, 2000)}, now)

	require.Equal(t, SegmentNew, got.Segment)
}

func TestNewWinsOverVIPRevenue(t *testing.T) {
	c := store.Customer{ID: 1, Name: "Esha"}
	got := Classify(c, []store.Sale{sale(1, 5, 200000)}, now)

	require.Equal(t, SegmentNew, got.Segment)
}

func TestNoSalesIsDormant(t *testing.T) {
	c := store.Customer{ID: 1, Name: "Farid"}
	got := Classify(c, nil, now)

	require.Equal(t, SegmentDormant, got.Segment)
	require.Zero(t, got.TotalRevenue)
}

func TestCancelledAndQuoteSalesIgnored(t *testing.T) {
	cancelled := sale(1, 10, 90000)
	cancelled.Status = store.StatusCancelled
	quote := sale(2, 10, 90000)
	quote.IsQuote = true

	c := store.Customer{ID: 1, Name: "Gita"}
	got := Classify(c, []store.Sale{cancelled, quote, sale(3, 40, 4000)}, now)

	require.Equal(t, 1, got.SaleCount)
	require.Equal(t, 4000.0, got.TotalRevenue, "cancelled and quote amounts stay out")
	require.Equal(t, SegmentRegular, got.Segment)
}

func TestOldRevenueExcludedFromVIPTest(t *testing.T) {
	// Revenue older than a year keeps the history alive but does not count
	// toward the VIP threshold.
	c := store.Customer{ID: 1, Name: "Hari"}
	got := Classify(c, []store.Sale{sale(1, 400, 500000), sale(2, 30, 1000)}, now)

	require.Equal(t, SegmentRegular, got.Segment)
	require.Equal(t, 1000.0, got.TotalRevenue)
}

func TestServiceSortsByRevenue(t *testing.T) {
	m := store.NewMemory()
	m.Customers[1] = store.Customer{ID: 1, Name: "Small"}
	m.Customers[2] = store.Customer{ID: 2, Name: "Big"}
	m.Sales = append(m.Sales,
		store.Sale{ID: 1, CustomerID: 1, Date: now.AddDate(0, 0, -5), TotalAmount: 100, Status: store.StatusActive},
		store.Sale{ID: 2, CustomerID: 2, Date: now.AddDate(0, 0, -5), TotalAmount: 9000, Status: store.StatusActive},
	)

	svc := NewService(m, slog.Default(), func() time.Time { return now })
	rows, err := svc.Customers(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].CustomerID)
	require.Equal(t, int64(1), rows[1].CustomerID)
}
