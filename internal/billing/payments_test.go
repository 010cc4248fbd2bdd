package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

func TestApplyPaymentSettlesInvoice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)

	paid, err := svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{
		Amount: decimal.NewFromInt(1180),
		Mode:   "upi",
	})
	require.NoError(t, err)

	require.Equal(t, StatusPaid, paid.Status)
	require.Equal(t, "1180.00", paid.AmountPaid.StringFixed(2))
	require.True(t, paid.BalanceDue.IsZero())
	require.Len(t, paid.Payments, 1)

	ledger, err := svc.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	require.Equal(t, "PAY-1", ledger[0].Number)
	require.Equal(t, PaymentStatusPaid, ledger[0].Status)
	require.Equal(t, doc.Number, ledger[0].AppliedTo[0].InvoiceNumber)
	require.Equal(t, "Rupees One Thousand One Hundred Eighty Only", ledger[0].AmountInWords)
}

func TestApplyPaymentSplitAcrossTwoPayments(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)

	partial, err := svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, partial.Status)
	require.Equal(t, "680.00", partial.BalanceDue.StringFixed(2))

	settled, err := svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(680)})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, settled.Status)
	require.Equal(t, "1180.00", settled.AmountPaid.StringFixed(2))
	require.True(t, settled.BalanceDue.IsZero())

	total, err := svc.TotalReceived(ctx)
	require.NoError(t, err)
	require.Equal(t, "1180.00", total.StringFixed(2))
}

func TestApplyPaymentRejectsNonReceivable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyQuote, quoteRequest())
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, FamilyQuote, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(100)})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestApplyPaymentRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.Zero})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(-50)})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestApplyPaymentRejectsAmountExceedingBalance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(2000)})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Overpaying the remainder of a partially paid document is rejected too.
	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(700)})
	require.ErrorIs(t, err, shared.ErrValidation)

	// amountPaid - amountRefunded never exceeds total.
	current, err := svc.GetDocument(ctx, FamilyInvoice, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "500.00", current.AmountPaid.StringFixed(2))
	require.True(t, current.AmountPaid.Sub(current.AmountRefunded).LessThanOrEqual(current.Total))

	ledger, err := svc.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
}

func TestApplyPaymentCleansLedgerWhenDocumentSaveFails(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	svc := newTestService(st, ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)

	st.failWritesOn("invoice", errors.New("disk full"))

	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(500)})
	require.Error(t, err)

	ledger, err := svc.ListPayments(ctx)
	require.NoError(t, err)
	require.Empty(t, ledger)
}

func TestApplyRefundRejectsAmountExceedingPaid(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	_, err = svc.ApplyRefund(ctx, FamilyInvoice, doc.ID, RefundRequest{Amount: decimal.NewFromInt(600)})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Document untouched by the failed refund.
	current, err := svc.GetDocument(ctx, FamilyInvoice, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "500.00", current.AmountPaid.StringFixed(2))
	require.True(t, current.AmountRefunded.IsZero())
	require.Equal(t, StatusPartiallyPaid, current.Status)

	ledger, err := svc.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
}

func TestApplyRefundFullReversal(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(1180)})
	require.NoError(t, err)

	ledger, err := svc.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	paymentID := ledger[0].ID

	refunded, err := svc.ApplyRefund(ctx, FamilyInvoice, doc.ID, RefundRequest{
		Amount:    decimal.NewFromInt(1180),
		Reason:    "order cancelled",
		PaymentID: paymentID,
	})
	require.NoError(t, err)

	require.True(t, refunded.AmountPaid.IsZero())
	require.Equal(t, "1180.00", refunded.AmountRefunded.StringFixed(2))
	require.Equal(t, "1180.00", refunded.BalanceDue.StringFixed(2))
	require.Equal(t, StatusSent, refunded.Status)

	ledger, err = svc.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	require.Equal(t, PaymentStatusRefunded, ledger[0].Status)
	require.True(t, ledger[1].IsRefund)
	require.Equal(t, paymentID, ledger[1].RefundOf)
	require.Equal(t, "-1180.00", ledger[1].Amount.StringFixed(2))

	total, err := svc.TotalReceived(ctx)
	require.NoError(t, err)
	require.True(t, total.IsZero())
}

func TestApplyRefundPartialKeepsPartiallyPaid(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	doc, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, FamilyInvoice, doc.ID, PaymentRequest{Amount: decimal.NewFromInt(1180)})
	require.NoError(t, err)

	refunded, err := svc.ApplyRefund(ctx, FamilyInvoice, doc.ID, RefundRequest{Amount: decimal.NewFromInt(180)})
	require.NoError(t, err)

	require.Equal(t, "1000.00", refunded.AmountPaid.StringFixed(2))
	require.Equal(t, "180.00", refunded.BalanceDue.StringFixed(2))
	require.Equal(t, StatusPartiallyPaid, refunded.Status)
}

func TestApplyRefundFullOnBillDemotesToOpen(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	req := quoteRequest()
	req.CounterpartyID = "vend-1"
	bill, err := svc.CreateDocument(ctx, FamilyBill, req)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, bill.Status)

	paid, err := svc.ApplyPayment(ctx, FamilyBill, bill.ID, PaymentRequest{Amount: decimal.NewFromInt(1180)})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)

	refunded, err := svc.ApplyRefund(ctx, FamilyBill, bill.ID, RefundRequest{Amount: decimal.NewFromInt(1180)})
	require.NoError(t, err)

	require.Equal(t, StatusOpen, refunded.Status)
	require.True(t, refunded.AmountPaid.IsZero())
	require.Equal(t, "1180.00", refunded.AmountRefunded.StringFixed(2))
	require.Equal(t, "1180.00", refunded.BalanceDue.StringFixed(2))
}

func TestApplyCreditSettlesInvoice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	invoice, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)

	creditReq := quoteRequest()
	creditReq.Lines = []LineItemRequest{{
		Description: "Returned goods",
		Quantity:    decimal.NewFromInt(1),
		Rate:        decimal.NewFromInt(500),
	}}
	credit, err := svc.CreateDocument(ctx, FamilyCreditNote, creditReq)
	require.NoError(t, err)
	require.Equal(t, "500.00", credit.CreditsRemaining.StringFixed(2))

	applied, err := svc.ApplyCredit(ctx, FamilyCreditNote, credit.ID, ApplyCreditRequest{
		TargetID: invoice.ID,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	require.True(t, applied.CreditsRemaining.IsZero())
	require.Equal(t, StatusClosed, applied.Status)

	target, err := svc.GetDocument(ctx, FamilyInvoice, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, "500.00", target.AmountPaid.StringFixed(2))
	require.Equal(t, "680.00", target.BalanceDue.StringFixed(2))
	require.Equal(t, StatusPartiallyPaid, target.Status)
	require.Len(t, target.Payments, 1)
	require.Equal(t, "credit", target.Payments[0].Mode)
}

func TestApplyCreditRejectsOverRemaining(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	invoice, err := svc.CreateDocument(ctx, FamilyInvoice, quoteRequest())
	require.NoError(t, err)
	credit, err := svc.CreateDocument(ctx, FamilyCreditNote, quoteRequest())
	require.NoError(t, err)

	_, err = svc.ApplyCredit(ctx, FamilyCreditNote, credit.ID, ApplyCreditRequest{
		TargetID: invoice.ID,
		Amount:   decimal.NewFromInt(99999),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}
