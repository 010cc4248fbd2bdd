package billing

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
)

// TaxPercent resolves a tax code token to its percentage by parsing the
// digits out of the code (gst18 -> 18, igst28 -> 28). Unknown or empty codes
// resolve to 0%.
func TaxPercent(code string) decimal.Decimal {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == "none" {
		return decimal.Zero
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code)
	if digits == "" {
		return decimal.Zero
	}
	pct, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return pct
}

// ComputeLine derives a line item from its request. Zero quantity or rate
// yields a zero amount, not an error.
func ComputeLine(req LineItemRequest) LineItem {
	base := req.Quantity.Mul(req.Rate).Round(2)
	tax := base.Mul(TaxPercent(req.TaxCode)).Div(hundred).Round(2)
	return LineItem{
		ItemID:      req.ItemID,
		Description: req.Description,
		Account:     req.Account,
		Quantity:    req.Quantity,
		Rate:        req.Rate,
		TaxCode:     req.TaxCode,
		TaxAmount:   tax,
		Amount:      base.Add(tax),
	}
}

// Recalculate rolls line amounts up into the document totals and refreshes
// the running balances. It is a pure function of current line state and is
// invoked on every line mutation.
func Recalculate(doc *Document) {
	doc.SubTotal = lo.Reduce(doc.Lines, func(acc decimal.Decimal, line LineItem, _ int) decimal.Decimal {
		return acc.Add(line.Amount.Sub(line.TaxAmount))
	}, decimal.Zero)
	doc.TaxAmount = lo.Reduce(doc.Lines, func(acc decimal.Decimal, line LineItem, _ int) decimal.Decimal {
		return acc.Add(line.TaxAmount)
	}, decimal.Zero)

	switch doc.DiscountType {
	case DiscountPercent:
		doc.DiscountAmount = doc.SubTotal.Mul(doc.DiscountValue).Div(hundred).Round(2)
	case DiscountFlat:
		doc.DiscountAmount = doc.DiscountValue.Round(2)
	default:
		doc.DiscountAmount = decimal.Zero
	}

	doc.Total = doc.SubTotal.Sub(doc.DiscountAmount).Add(doc.TaxAmount).Add(doc.Adjustment).Round(2)
	refreshBalances(doc)
}

// refreshBalances re-derives balanceDue (floored at zero) and, for credit
// documents, creditsRemaining.
func refreshBalances(doc *Document) {
	if doc.Family.Credit() {
		doc.CreditsRemaining = decimal.Max(decimal.Zero, doc.Total.Sub(doc.CreditsApplied))
		return
	}
	doc.BalanceDue = decimal.Max(decimal.Zero, doc.Total.Sub(doc.AmountPaid))
}
