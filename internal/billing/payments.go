package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// ApplyPayment records a payment against an invoice or bill: increments
// amountPaid, recomputes balanceDue, promotes the status, and mirrors the
// payment into the payments-received ledger. The amount must not exceed the
// outstanding balance, so amountPaid can never climb past total.
func (s *Service) ApplyPayment(ctx context.Context, family Family, id string, req PaymentRequest) (*Document, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if !family.Receivable() {
		return nil, fmt.Errorf("%w: payments apply only to invoices and bills", shared.ErrValidation)
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", shared.ErrValidation)
	}

	doc, err := s.repo.Get(ctx, family, id)
	if err != nil {
		return nil, err
	}
	if doc.Status == StatusVoid {
		return nil, fmt.Errorf("%w: cannot pay a void document", shared.ErrValidation)
	}
	if req.Amount.GreaterThan(doc.BalanceDue) {
		return nil, fmt.Errorf("%w: payment %s exceeds balance due %s", shared.ErrValidation, req.Amount.StringFixed(2), doc.BalanceDue.StringFixed(2))
	}

	now := s.clock.Now()
	actor := shared.ActorFromContext(ctx)

	record := &Payment{
		ID:        uuid.NewString(),
		Amount:    req.Amount,
		Mode:      req.Mode,
		Reference: req.Reference,
		AppliedTo: []AppliedInvoice{{
			InvoiceID:     doc.ID,
			InvoiceNumber: doc.Number,
			AppliedAmount: req.Amount,
		}},
		Status:        PaymentStatusPaid,
		AmountInWords: AmountInWords(req.Amount),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	doc.AmountPaid = doc.AmountPaid.Add(req.Amount)
	refreshBalances(doc)
	doc.Status = settledStatus(doc)
	doc.Payments = append(doc.Payments, PaymentApplication{
		PaymentID: record.ID,
		Amount:    req.Amount,
		Mode:      req.Mode,
		Reference: req.Reference,
		Date:      now,
	})
	doc.UpdatedAt = now
	appendActivity(doc, "payment", fmt.Sprintf("Payment of %s received (%s)", req.Amount.StringFixed(2), record.Number), actor, now)

	if err := s.repo.Save(ctx, doc); err != nil {
		if delErr := s.payments.Delete(ctx, record.ID); delErr != nil {
			return nil, fmt.Errorf("apply payment failed (%v) and ledger cleanup failed: %w", err, delErr)
		}
		return nil, fmt.Errorf("apply payment: %w", err)
	}
	return doc, nil
}

// settledStatus derives the post-payment status from the remaining balance.
func settledStatus(doc *Document) Status {
	if doc.BalanceDue.IsZero() {
		return StatusPaid
	}
	return StatusPartiallyPaid
}

// demotedStatus is the status a fully or partially refunded document falls
// back to.
func demotedStatus(doc *Document) Status {
	if doc.AmountPaid.IsPositive() {
		return StatusPartiallyPaid
	}
	if doc.Family == FamilyBill {
		return StatusOpen
	}
	return StatusSent
}

// ApplyRefund reverses part or all of the amount paid on a document. The
// refund amount must be positive and must not exceed amountPaid; on failure
// the document is left untouched. A negative mirror entry is written to the
// payments-received ledger, and the original payment record, when named, is
// flagged REFUNDED.
func (s *Service) ApplyRefund(ctx context.Context, family Family, id string, req RefundRequest) (*Document, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if !family.Receivable() {
		return nil, fmt.Errorf("%w: refunds apply only to invoices and bills", shared.ErrValidation)
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be positive", shared.ErrValidation)
	}

	doc, err := s.repo.Get(ctx, family, id)
	if err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(doc.AmountPaid) {
		return nil, fmt.Errorf("%w: refund %s exceeds amount paid %s", shared.ErrValidation, req.Amount.StringFixed(2), doc.AmountPaid.StringFixed(2))
	}

	now := s.clock.Now()
	actor := shared.ActorFromContext(ctx)

	record := &Payment{
		ID:     uuid.NewString(),
		Amount: req.Amount.Neg(),
		AppliedTo: []AppliedInvoice{{
			InvoiceID:     doc.ID,
			InvoiceNumber: doc.Number,
			AppliedAmount: req.Amount.Neg(),
		}},
		Status:        PaymentStatusRefunded,
		IsRefund:      true,
		RefundOf:      req.PaymentID,
		Reference:     req.Reason,
		AmountInWords: AmountInWords(req.Amount),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("record refund: %w", err)
	}
	if req.PaymentID != "" {
		if err := s.payments.MarkRefunded(ctx, req.PaymentID, now); err != nil {
			if delErr := s.payments.Delete(ctx, record.ID); delErr != nil {
				return nil, fmt.Errorf("flag payment refunded failed (%v) and ledger cleanup failed: %w", err, delErr)
			}
			return nil, fmt.Errorf("flag payment refunded: %w", err)
		}
	}

	doc.AmountRefunded = doc.AmountRefunded.Add(req.Amount)
	doc.AmountPaid = decimal.Max(decimal.Zero, doc.AmountPaid.Sub(req.Amount))
	refreshBalances(doc)
	doc.Status = demotedStatus(doc)
	doc.Payments = append(doc.Payments, PaymentApplication{
		PaymentID: record.ID,
		Amount:    req.Amount.Neg(),
		Reference: req.Reason,
		IsRefund:  true,
		Date:      now,
	})
	doc.UpdatedAt = now
	appendActivity(doc, "refund", fmt.Sprintf("Refund of %s issued (%s)", req.Amount.StringFixed(2), record.Number), actor, now)

	if err := s.repo.Save(ctx, doc); err != nil {
		if delErr := s.payments.Delete(ctx, record.ID); delErr != nil {
			return nil, fmt.Errorf("apply refund failed (%v) and ledger cleanup failed: %w", err, delErr)
		}
		return nil, fmt.Errorf("apply refund: %w", err)
	}
	return doc, nil
}

// ApplyCredit consumes part of a credit note or vendor credit against a
// receivable document: creditsRemaining drops on the credit, amountPaid rises
// on the target, and the credit closes once exhausted.
func (s *Service) ApplyCredit(ctx context.Context, family Family, id string, req ApplyCreditRequest) (*Document, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if !family.Credit() {
		return nil, fmt.Errorf("%w: only credit notes and vendor credits can be applied", shared.ErrValidation)
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: credit amount must be positive", shared.ErrValidation)
	}

	targetFamily := FamilyInvoice
	if family == FamilyVendorCredit {
		targetFamily = FamilyBill
	}

	credit, err := s.repo.Get(ctx, family, id)
	if err != nil {
		return nil, err
	}
	if credit.Status == StatusVoid {
		return nil, fmt.Errorf("%w: cannot apply a void credit", shared.ErrValidation)
	}
	if req.Amount.GreaterThan(credit.CreditsRemaining) {
		return nil, fmt.Errorf("%w: credit %s exceeds remaining %s", shared.ErrValidation, req.Amount.StringFixed(2), credit.CreditsRemaining.StringFixed(2))
	}

	target, err := s.repo.Get(ctx, targetFamily, req.TargetID)
	if err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(target.BalanceDue) {
		return nil, fmt.Errorf("%w: credit %s exceeds balance due %s", shared.ErrValidation, req.Amount.StringFixed(2), target.BalanceDue.StringFixed(2))
	}

	now := s.clock.Now()
	actor := shared.ActorFromContext(ctx)

	credit.CreditsApplied = credit.CreditsApplied.Add(req.Amount)
	refreshBalances(credit)
	if credit.CreditsRemaining.IsZero() {
		credit.Status = StatusClosed
	}
	credit.UpdatedAt = now
	appendActivity(credit, "applied", fmt.Sprintf("Applied %s to %s %s", req.Amount.StringFixed(2), targetFamily, target.Number), actor, now)

	if err := s.repo.Save(ctx, credit); err != nil {
		return nil, fmt.Errorf("apply credit: %w", err)
	}

	target.AmountPaid = target.AmountPaid.Add(req.Amount)
	refreshBalances(target)
	target.Status = settledStatus(target)
	target.Payments = append(target.Payments, PaymentApplication{
		PaymentID: credit.ID,
		Amount:    req.Amount,
		Mode:      "credit",
		Reference: credit.Number,
		Date:      now,
	})
	target.UpdatedAt = now
	appendActivity(target, "payment", fmt.Sprintf("Credit %s applied for %s", credit.Number, req.Amount.StringFixed(2)), actor, now)

	if err := s.repo.Save(ctx, target); err != nil {
		// Put the consumed credit back.
		credit.CreditsApplied = credit.CreditsApplied.Sub(req.Amount)
		refreshBalances(credit)
		if credit.Status == StatusClosed && credit.CreditsRemaining.IsPositive() {
			credit.Status = StatusOpen
		}
		if revErr := s.repo.Save(ctx, credit); revErr != nil {
			return nil, fmt.Errorf("apply credit to target failed (%v) and credit restore failed: %w", err, revErr)
		}
		return nil, fmt.Errorf("apply credit to target: %w", err)
	}
	return credit, nil
}

// ListPayments returns the payments-received ledger.
func (s *Service) ListPayments(ctx context.Context) ([]Payment, error) {
	return s.payments.List(ctx)
}

// TotalReceived sums the signed ledger amounts, netting refunds out.
func (s *Service) TotalReceived(ctx context.Context) (decimal.Decimal, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return lo.Reduce(payments, func(acc decimal.Decimal, p Payment, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero), nil
}
