package billing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ganesh5491/vyapar-sub000/internal/platform/store"
	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// numberFormat describes a family's human-readable numbering template.
// Width 0 means no zero padding. YearInfix inserts the current year between
// prefix and counter (PO-2025-0001).
type numberFormat struct {
	Prefix    string
	Width     int
	YearInfix bool
}

var numberFormats = map[string]numberFormat{
	string(FamilyQuote):         {Prefix: "QT-", Width: 6},
	string(FamilySalesOrder):    {Prefix: "SO-", Width: 5},
	string(FamilyInvoice):       {Prefix: "INV-", Width: 5},
	string(FamilyChallan):       {Prefix: "DC-", Width: 5},
	string(FamilyPurchaseOrder): {Prefix: "PO-", Width: 4, YearInfix: true},
	string(FamilyBill):          {Prefix: "BILL-", Width: 0},
	string(FamilyCreditNote):    {Prefix: "CN-", Width: 6},
	string(FamilyVendorCredit):  {Prefix: "VC-", Width: 6},
	string(FamilyEWayBill):      {Prefix: "EWB-", Width: 6},
	FamilyPayments:              {Prefix: "PAY-", Width: 0},
}

// FormatNumber renders counter n for a family at the given instant.
func FormatNumber(family string, n int64, now time.Time) string {
	format, ok := numberFormats[family]
	if !ok {
		format = numberFormat{Prefix: family + "-", Width: 6}
	}
	if format.YearInfix {
		return fmt.Sprintf("%s%d-%0*d", format.Prefix, now.Year(), format.Width, n)
	}
	if format.Width == 0 {
		return format.Prefix + strconv.FormatInt(n, 10)
	}
	return fmt.Sprintf("%s%0*d", format.Prefix, format.Width, n)
}

// allocateNumber takes the next counter value from an in-memory collection
// and advances it. Callers must hold the collection inside a store.Update so
// the counter cannot race. Issued numbers are never reassigned, even when
// the document is later deleted.
func allocateNumber(col *store.Collection, family string, now time.Time) (string, int64) {
	n := col.NextNumber
	col.NextNumber = n + 1
	return FormatNumber(family, n, now), n
}

// SequenceGenerator issues the next document number for a family on its own.
// Document creation allocates inline within the same collection write; this
// standalone form backs the numbering preview endpoint.
type SequenceGenerator struct {
	store store.Store
	clock shared.Clock
}

// NewSequenceGenerator builds the generator.
func NewSequenceGenerator(st store.Store, clock shared.Clock) *SequenceGenerator {
	return &SequenceGenerator{store: st, clock: clock}
}

// Next reads the family counter, formats it, and persists the increment.
func (g *SequenceGenerator) Next(ctx context.Context, family string) (string, int64, error) {
	var formatted string
	var counter int64
	err := g.store.Update(ctx, family, func(col *store.Collection) error {
		formatted, counter = allocateNumber(col, family, g.clock.Now())
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return formatted, counter, nil
}

// Peek returns the number the next create would receive without consuming it.
func (g *SequenceGenerator) Peek(ctx context.Context, family string) (string, error) {
	col, err := g.store.ReadCollection(ctx, family)
	if err != nil {
		return "", err
	}
	return FormatNumber(family, col.NextNumber, g.clock.Now()), nil
}
