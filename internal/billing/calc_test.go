package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTaxPercent(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"gst18", "18"},
		{"GST12", "12"},
		{"igst28", "28"},
		{"gst0", "0"},
		{"none", "0"},
		{"", "0"},
		{"exempt", "0"},
		{" gst5 ", "5"},
	}
	for _, tc := range cases {
		got := TaxPercent(tc.code)
		require.Equal(t, tc.want, got.String(), "code %q", tc.code)
	}
}

func TestComputeLine(t *testing.T) {
	line := ComputeLine(LineItemRequest{
		Description: "Steel rods",
		Quantity:    decimal.NewFromInt(2),
		Rate:        decimal.NewFromInt(500),
		TaxCode:     "gst18",
	})

	require.Equal(t, "1180.00", line.Amount.StringFixed(2))
	require.Equal(t, "180.00", line.TaxAmount.StringFixed(2))
}

func TestComputeLineZeroQuantity(t *testing.T) {
	line := ComputeLine(LineItemRequest{
		Description: "Placeholder",
		Quantity:    decimal.Zero,
		Rate:        decimal.NewFromInt(500),
		TaxCode:     "gst18",
	})

	require.True(t, line.Amount.IsZero())
	require.True(t, line.TaxAmount.IsZero())
}

func TestComputeLineFractionalRounding(t *testing.T) {
	line := ComputeLine(LineItemRequest{
		Description: "Cable per metre",
		Quantity:    decimal.RequireFromString("3"),
		Rate:        decimal.RequireFromString("33.333"),
		TaxCode:     "gst18",
	})

	// 3 * 33.333 = 99.999 rounds to 100.00 before tax is derived.
	require.Equal(t, "100.00", line.Amount.Sub(line.TaxAmount).StringFixed(2))
	require.Equal(t, "18.00", line.TaxAmount.StringFixed(2))
}

func taxedDocument() *Document {
	doc := &Document{Family: FamilyInvoice}
	doc.Lines = []LineItem{
		ComputeLine(LineItemRequest{
			Description: "Steel rods",
			Quantity:    decimal.NewFromInt(2),
			Rate:        decimal.NewFromInt(500),
			TaxCode:     "gst18",
		}),
	}
	return doc
}

func TestRecalculateTotals(t *testing.T) {
	doc := taxedDocument()
	Recalculate(doc)

	require.Equal(t, "1000.00", doc.SubTotal.StringFixed(2))
	require.Equal(t, "180.00", doc.TaxAmount.StringFixed(2))
	require.Equal(t, "1180.00", doc.Total.StringFixed(2))
	require.Equal(t, "1180.00", doc.BalanceDue.StringFixed(2))
}

func TestRecalculatePercentDiscount(t *testing.T) {
	doc := taxedDocument()
	doc.DiscountType = DiscountPercent
	doc.DiscountValue = decimal.NewFromInt(10)
	Recalculate(doc)

	require.Equal(t, "100.00", doc.DiscountAmount.StringFixed(2))
	require.Equal(t, "1080.00", doc.Total.StringFixed(2))
}

func TestRecalculateFlatDiscountAndAdjustment(t *testing.T) {
	doc := taxedDocument()
	doc.DiscountType = DiscountFlat
	doc.DiscountValue = decimal.NewFromInt(80)
	doc.Adjustment = decimal.RequireFromString("-0.50")
	Recalculate(doc)

	require.Equal(t, "80.00", doc.DiscountAmount.StringFixed(2))
	require.Equal(t, "1099.50", doc.Total.StringFixed(2))
}

func TestRecalculateBalanceNeverNegative(t *testing.T) {
	doc := taxedDocument()
	doc.AmountPaid = decimal.NewFromInt(2000)
	Recalculate(doc)

	require.True(t, doc.BalanceDue.IsZero())
}

func TestRecalculateCreditFamilyTracksRemaining(t *testing.T) {
	doc := taxedDocument()
	doc.Family = FamilyCreditNote
	doc.CreditsApplied = decimal.NewFromInt(400)
	Recalculate(doc)

	require.Equal(t, "780.00", doc.CreditsRemaining.StringFixed(2))
	require.True(t, doc.BalanceDue.IsZero())
}
