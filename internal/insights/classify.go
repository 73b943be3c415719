// Package insights classifies customers by revenue and recency from their
// sale history. Like every other figure in the system the segments are
// derived on demand, never stored.
package insights

import (
	"sort"
	"time"

	"github.com/retailbooks/retailbooks/internal/store"
)

// Segment labels a customer bucket.
type Segment string

const (
	SegmentVIP     Segment = "vip"
	SegmentRegular Segment = "regular"
	SegmentNew     Segment = "new"
	SegmentDormant Segment = "dormant"
)

const (
	// vipRevenue is the trailing-year revenue above which a customer is a VIP.
	vipRevenue = 100000
	// newWindowDays bounds how recent a first purchase makes a customer "new".
	newWindowDays = 30
	// dormantAfterDays is the silence period after which a customer goes
	// dormant. Dormancy wins over the VIP revenue test: a high spender who
	// stopped buying is reported dormant, not vip.
	dormantAfterDays = 90
)

// CustomerInsight is one classified customer row.
type CustomerInsight struct {
	CustomerID   int64     `json:"customer_id"`
	Name         string    `json:"name"`
	Segment      Segment   `json:"segment"`
	TotalRevenue float64   `json:"total_revenue"`
	SaleCount    int       `json:"sale_count"`
	FirstSale    time.Time `json:"first_sale"`
	LastSale     time.Time `json:"last_sale"`
}

// Classify derives the segment for one customer's sale history as of now.
// Customers with no countable sales are skipped by the caller; a zero-sale
// history here yields a dormant row with zero revenue.
func Classify(customer store.Customer, sales []store.Sale, now time.Time) CustomerInsight {
	insight := CustomerInsight{CustomerID: customer.ID, Name: customer.Name}

	yearAgo := now.AddDate(-1, 0, 0)
	for _, sale := range sales {
		if !sale.Status.Countable() || sale.IsQuote {
			continue
		}
		insight.SaleCount++
		if insight.FirstSale.IsZero() || sale.Date.Before(insight.FirstSale) {
			insight.FirstSale = sale.Date
		}
		if sale.Date.After(insight.LastSale) {
			insight.LastSale = sale.Date
		}
		if !sale.Date.Before(yearAgo) {
			insight.TotalRevenue += sale.TotalAmount
		}
	}

	insight.Segment = segment(insight, now)
	return insight
}

func segment(in CustomerInsight, now time.Time) Segment {
	if in.SaleCount == 0 || now.Sub(in.LastSale) > dormantAfterDays*24*time.Hour {
		return SegmentDormant
	}
	if now.Sub(in.FirstSale) <= newWindowDays*24*time.Hour {
		return SegmentNew
	}
	if in.TotalRevenue >= vipRevenue {
		return SegmentVIP
	}
	return SegmentRegular
}

func sortInsights(rows []CustomerInsight) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalRevenue != rows[j].TotalRevenue {
			return rows[i].TotalRevenue > rows[j].TotalRevenue
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
}
