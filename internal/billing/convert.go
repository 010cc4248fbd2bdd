package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// conversionTargets lists the legal target families per source family.
var conversionTargets = map[Family][]Family{
	FamilyQuote:         {FamilySalesOrder, FamilyInvoice},
	FamilySalesOrder:    {FamilyInvoice},
	FamilyChallan:       {FamilyInvoice},
	FamilyPurchaseOrder: {FamilyBill},
}

// Convert creates a target document copied field-by-field from the source,
// links the two records, and forces the source into its terminal converted
// status. The target write happens first; if the source update then fails,
// the freshly created target is removed again so no orphaned, unlinked
// document survives.
func (s *Service) Convert(ctx context.Context, family Family, id string, target Family) (*ConversionResult, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	allowed, ok := conversionTargets[family]
	if !ok || !lo.Contains(allowed, target) {
		return nil, fmt.Errorf("%w: cannot convert %s to %s", shared.ErrValidation, family, target)
	}

	source, err := s.repo.Get(ctx, family, id)
	if err != nil {
		return nil, err
	}
	if source.ConvertedTo != "" {
		return nil, fmt.Errorf("%w: %s already converted", shared.ErrValidation, source.Number)
	}

	now := s.clock.Now()
	actor := shared.ActorFromContext(ctx)

	doc := &Document{
		ID:               uuid.NewString(),
		Family:           target,
		CounterpartyID:   source.CounterpartyID,
		CounterpartyName: source.CounterpartyName,
		BillingAddress:   source.BillingAddress,
		ShippingAddress:  source.ShippingAddress,
		Lines:            append([]LineItem(nil), source.Lines...),
		DiscountType:     source.DiscountType,
		DiscountValue:    source.DiscountValue,
		Adjustment:       source.Adjustment,
		Notes:            source.Notes,
		Status:           InitialStatusFor(target),
		AmountPaid:       decimal.Zero,
		AmountRefunded:   decimal.Zero,
		SourceType:       family,
		SourceID:         source.ID,
		SourceNumber:     source.Number,
		ActivityLog:      []ActivityEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	Recalculate(doc)
	appendActivity(doc, "created", fmt.Sprintf("Created from %s %s", family, source.Number), actor, now)

	if err := s.repo.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("convert %s: create %s: %w", family, target, err)
	}

	source.ConvertedTo = doc.ID
	source.ConvertedToFamily = target
	if terminal, ok := convertedStatus[family]; ok {
		source.Status = terminal
	}
	source.UpdatedAt = now
	appendActivity(source, "converted", fmt.Sprintf("Converted to %s %s", target, doc.Number), actor, now)

	if err := s.repo.Save(ctx, source); err != nil {
		// Compensate: drop the target so we never leave an orphan behind.
		if delErr := s.repo.Delete(ctx, target, doc.ID); delErr != nil {
			return nil, fmt.Errorf("convert %s: link source failed (%v) and target cleanup failed: %w", family, err, delErr)
		}
		return nil, fmt.Errorf("convert %s: link source: %w", family, err)
	}
	return &ConversionResult{Source: source, Target: doc}, nil
}
