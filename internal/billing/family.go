package billing

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// Family identifies one kind of financial document. Each family has its own
// numbering sequence and status enumeration.
type Family string

const (
	FamilyQuote         Family = "quote"
	FamilySalesOrder    Family = "salesorder"
	FamilyInvoice       Family = "invoice"
	FamilyBill          Family = "bill"
	FamilyCreditNote    Family = "creditnote"
	FamilyVendorCredit  Family = "vendorcredit"
	FamilyChallan       Family = "challan"
	FamilyPurchaseOrder Family = "purchaseorder"
	FamilyEWayBill      Family = "ewaybill"
)

// FamilyPayments is the payments-received ledger collection. It holds
// Payment records rather than Documents.
const FamilyPayments = "payments"

func (f Family) String() string {
	return string(f)
}

// Validate reports whether f is a known document family.
func (f Family) Validate() error {
	allowed := []Family{
		FamilyQuote,
		FamilySalesOrder,
		FamilyInvoice,
		FamilyBill,
		FamilyCreditNote,
		FamilyVendorCredit,
		FamilyChallan,
		FamilyPurchaseOrder,
		FamilyEWayBill,
	}
	if !lo.Contains(allowed, f) {
		return fmt.Errorf("%w: unknown document family %q", shared.ErrNotFound, string(f))
	}
	return nil
}

// CounterpartyKind reports which masterdata collection the family's
// counterparty lives in.
func (f Family) CounterpartyKind() string {
	switch f {
	case FamilyBill, FamilyPurchaseOrder, FamilyVendorCredit:
		return "vendor"
	default:
		return "customer"
	}
}

// Receivable reports whether the family carries amountPaid/balanceDue.
func (f Family) Receivable() bool {
	return f == FamilyInvoice || f == FamilyBill
}

// Credit reports whether the family carries creditsRemaining.
func (f Family) Credit() bool {
	return f == FamilyCreditNote || f == FamilyVendorCredit
}
