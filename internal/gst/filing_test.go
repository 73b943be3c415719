package gst

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/retailbooks/retailbooks/internal/store"
	_ "github.com/retailbooks/retailbooks/testing"
)

var shop = store.ShopConfig{
	GSTIN:       "29ABCDE1234F1Z5",
	State:       "Karnataka",
	IsInclusive: false,
}

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRegisteredCustomerRoutesToB2B(t *testing.T) {
	in := Input{
		Shop: shop,
		Customers: map[int64]store.Customer{
			1: {ID: 1, Name: "Registered Mart", GSTIN: "27AAAAA0000A1Z5", State: "Maharashtra"},
		},
		Products: map[int64]store.Product{5: {ID: 5, Name: "Soap", HSNCode: "3401"}},
		Sales: []store.Sale{{
			ID: 1, CustomerID: 1, ReferenceNo: "INV-1", Date: day("2024-01-05"), Status: store.StatusActive,
			Items: []store.SaleItem{{ProductID: 5, Quantity: 10, Rate: 100, GSTRate: 18}},
		}},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.B2B, 1)
	party := filing.B2B[0]
	require.Equal(t, "27AAAAA0000A1Z5", party.GSTIN)
	require.Len(t, party.Invoices, 1)
	inv := party.Invoices[0]
	require.Equal(t, 1180.0, inv.Value)
	require.Len(t, inv.Items, 1)
	// Interstate supply: full tax as IGST.
	require.Equal(t, 180.0, inv.Items[0].IGST)
	require.Equal(t, 0.0, inv.Items[0].CGST)
	require.Empty(t, filing.B2CS)
	require.Empty(t, filing.B2CL)
}

func TestIntrastateSplitsCGSTSGST(t *testing.T) {
	in := Input{
		Shop: shop,
		Customers: map[int64]store.Customer{
			1: {ID: 1, GSTIN: "29BBBBB0000B1Z5", State: "karnataka"}, // case-insensitive match
		},
		Products: map[int64]store.Product{5: {ID: 5, Name: "Soap", HSNCode: "3401"}},
		Sales: []store.Sale{{
			ID: 1, CustomerID: 1, ReferenceNo: "INV-1", Date: day("2024-01-05"), Status: store.StatusActive,
			Items: []store.SaleItem{{ProductID: 5, Quantity: 1, Rate: 100, GSTRate: 18}},
		}},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.B2B, 1)
	line := filing.B2B[0].Invoices[0].Items[0]
	require.Equal(t, 0.0, line.IGST)
	require.Equal(t, 9.0, line.CGST)
	require.Equal(t, 9.0, line.SGST)
}

func TestLargeInterstateUnregisteredRoutesToB2CL(t *testing.T) {
	in := Input{
		Shop: shop,
		Customers: map[int64]store.Customer{
			2: {ID: 2, Name: "Distant Buyer", State: "Maharashtra"},
		},
		Products: map[int64]store.Product{5: {ID: 5, Name: "Machinery", HSNCode: "8479"}},
		Sales: []store.Sale{{
			ID: 1, CustomerID: 2, ReferenceNo: "INV-9", Date: day("2024-01-20"), Status: store.StatusActive,
			Items: []store.SaleItem{{ProductID: 5, Quantity: 1, Rate: 300000, GSTRate: 18}},
		}},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.B2CL, 1, "invoice over threshold must be reported individually")
	require.Empty(t, filing.B2CS, "B2CL invoice lines must not be aggregated into B2CS")
	inv := filing.B2CL[0]
	require.Equal(t, 354000.0, inv.Value)
	require.Equal(t, 300000.0, inv.TaxableValue)
	require.Equal(t, 54000.0, inv.IGST)
	require.Equal(t, "Maharashtra", inv.PlaceOfSupply)
}

func TestSmallSalesAggregateByPlaceAndRate(t *testing.T) {
	in := Input{
		Shop: shop,
		Customers: map[int64]store.Customer{
			2: {ID: 2, State: "Maharashtra"},
			3: {ID: 3, State: "Maharashtra"},
		},
		Products: map[int64]store.Product{5: {ID: 5, Name: "Soap", HSNCode: "3401"}},
		Sales: []store.Sale{
			{ID: 1, CustomerID: 2, ReferenceNo: "INV-1", Date: day("2024-01-05"), Status: store.StatusActive,
				Items: []store.SaleItem{{ProductID: 5, Quantity: 1, Rate: 100, GSTRate: 18}}},
			{ID: 2, CustomerID: 3, ReferenceNo: "INV-2", Date: day("2024-01-06"), Status: store.StatusActive,
				Items: []store.SaleItem{{ProductID: 5, Quantity: 2, Rate: 100, GSTRate: 18}}},
			{ID: 3, CustomerID: 2, ReferenceNo: "INV-3", Date: day("2024-01-07"), Status: store.StatusActive,
				Items: []store.SaleItem{{ProductID: 5, Quantity: 1, Rate: 200, GSTRate: 12}}},
		},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.B2CS, 2, "aggregated by (place_of_supply, rate)")
	require.Equal(t, 12.0, filing.B2CS[0].GSTRate)
	require.Equal(t, 200.0, filing.B2CS[0].TaxableValue)
	require.Equal(t, 18.0, filing.B2CS[1].GSTRate)
	require.Equal(t, 300.0, filing.B2CS[1].TaxableValue)
	require.Equal(t, 54.0, filing.B2CS[1].IGST)
}

func TestWalkInCustomerDefaultsToIntrastate(t *testing.T) {
	in := Input{
		Shop:     shop,
		Products: map[int64]store.Product{5: {ID: 5, Name: "Soap", HSNCode: "3401"}},
		Sales: []store.Sale{{
			ID: 1, CustomerID: 0, ReferenceNo: "INV-1", Date: day("2024-01-05"), Status: store.StatusActive,
			Items: []store.SaleItem{{ProductID: 5, Quantity: 1, Rate: 100, GSTRate: 18}},
		}},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.B2CS, 1)
	row := filing.B2CS[0]
	require.Equal(t, "Karnataka", row.PlaceOfSupply, "absent customer state uses the shop state")
	require.Equal(t, 0.0, row.IGST)
	require.Equal(t, 9.0, row.CGST)
	require.Equal(t, 9.0, row.SGST)
}

func TestHSNSummaryIndependentOfBuckets(t *testing.T) {
	in := Input{
		Shop: shop,
		Customers: map[int64]store.Customer{
			1: {ID: 1, GSTIN: "27AAAAA0000A1Z5", State: "Maharashtra"},
			2: {ID: 2, State: "Maharashtra"},
		},
		Products: map[int64]store.Product{
			5: {ID: 5, Name: "Soap", HSNCode: "3401"},
			6: {ID: 6, Name: "Shampoo", HSNCode: "3305"},
		},
		Sales: []store.Sale{
			{ID: 1, CustomerID: 1, ReferenceNo: "INV-1", Date: day("2024-01-05"), Status: store.StatusActive,
				Items: []store.SaleItem{{ProductID: 5, Quantity: 3, Rate: 100, GSTRate: 18}}},
			{ID: 2, CustomerID: 2, ReferenceNo: "INV-2", Date: day("2024-01-06"), Status: store.StatusActive,
				Items: []store.SaleItem{
					{ProductID: 5, Quantity: 2, Rate: 100, GSTRate: 18},
					{ProductID: 6, Quantity: 1, Rate: 50, GSTRate: 12},
				}},
		},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.HSN.Data, 2)
	// Sorted by HSN code: 3305 first.
	require.Equal(t, "3305", filing.HSN.Data[0].HSNCode)
	require.Equal(t, 50.0, filing.HSN.Data[0].TaxableValue)
	require.Equal(t, "3401", filing.HSN.Data[1].HSNCode)
	require.Equal(t, 5.0, filing.HSN.Data[1].Quantity, "quantity sums across B2B and B2CS invoices")
	require.Equal(t, 500.0, filing.HSN.Data[1].TaxableValue)
}

func TestNotesSplitByRegistration(t *testing.T) {
	in := Input{
		Shop: shop,
		Customers: map[int64]store.Customer{
			1: {ID: 1, GSTIN: "27AAAAA0000A1Z5", State: "Maharashtra"},
			2: {ID: 2, State: "Karnataka"},
		},
		Notes: []store.Transaction{
			{ID: 1, Type: store.CreditNote, EntityType: store.EntityCustomer, EntityID: 1,
				ReferenceNo: "CN-1", Date: day("2024-01-12"), Amount: 590, GSTAmount: 90, Status: store.StatusActive},
			{ID: 2, Type: store.CreditNote, EntityType: store.EntityCustomer, EntityID: 2,
				ReferenceNo: "CN-2", Date: day("2024-01-13"), Amount: 118, GSTAmount: 18, Status: store.StatusActive},
			// Payments are not notes and must be ignored here.
			{ID: 3, Type: store.PaymentIn, EntityType: store.EntityCustomer, EntityID: 1,
				Date: day("2024-01-14"), Amount: 100, Status: store.StatusActive},
		},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.CDNR, 1)
	require.Equal(t, "27AAAAA0000A1Z5", filing.CDNR[0].GSTIN)
	note := filing.CDNR[0].Notes[0]
	// Tax is back-calculated from the stored gst amount, not re-derived.
	require.Equal(t, 500.0, note.TaxableValue)
	require.Equal(t, 90.0, note.TaxAmount)
	require.Equal(t, 90.0, note.IGST, "registered recipient in another state pays IGST")

	require.Len(t, filing.CDNUR, 1)
	unreg := filing.CDNUR[0]
	require.Equal(t, 100.0, unreg.TaxableValue)
	require.Equal(t, 9.0, unreg.CGST)
	require.Equal(t, 9.0, unreg.SGST)
}

func TestNilRatedAggregatedBySupplyType(t *testing.T) {
	in := Input{
		Shop: shop,
		Customers: map[int64]store.Customer{
			2: {ID: 2, State: "Maharashtra"},
		},
		Products: map[int64]store.Product{7: {ID: 7, Name: "Fresh Produce", HSNCode: "0701"}},
		Sales: []store.Sale{
			{ID: 1, CustomerID: 0, ReferenceNo: "INV-1", Date: day("2024-01-05"), Status: store.StatusActive,
				Items: []store.SaleItem{{ProductID: 7, Quantity: 5, Rate: 40, GSTRate: 0}}},
			{ID: 2, CustomerID: 2, ReferenceNo: "INV-2", Date: day("2024-01-06"), Status: store.StatusActive,
				Items: []store.SaleItem{{ProductID: 7, Quantity: 2, Rate: 40, GSTRate: 0}}},
		},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.Nil.Inv, 2)
	require.Equal(t, SupplyIntrastate, filing.Nil.Inv[0].SupplyType)
	require.Equal(t, 200.0, filing.Nil.Inv[0].Value)
	require.Equal(t, SupplyInterstate, filing.Nil.Inv[1].SupplyType)
	require.Equal(t, 80.0, filing.Nil.Inv[1].Value)
	require.Empty(t, filing.HSN.Data, "zero-rate lines stay out of the HSN summary")
}

func TestInclusivePricingBacksOutTax(t *testing.T) {
	inclusiveShop := shop
	inclusiveShop.IsInclusive = true
	in := Input{
		Shop:     inclusiveShop,
		Products: map[int64]store.Product{5: {ID: 5, Name: "Soap", HSNCode: "3401"}},
		Sales: []store.Sale{{
			ID: 1, CustomerID: 0, ReferenceNo: "INV-1", Date: day("2024-01-05"), Status: store.StatusActive,
			Items: []store.SaleItem{{ProductID: 5, Quantity: 1, Rate: 118, GSTRate: 18}},
		}},
	}

	filing := BuildFiling(in)

	require.Len(t, filing.B2CS, 1)
	require.Equal(t, 100.0, filing.B2CS[0].TaxableValue)
	require.Equal(t, 9.0, filing.B2CS[0].CGST)
	require.Equal(t, 9.0, filing.B2CS[0].SGST)
}
