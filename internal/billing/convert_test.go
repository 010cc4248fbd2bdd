package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

func TestConvertQuoteToInvoice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	quote, err := svc.CreateDocument(ctx, FamilyQuote, quoteRequest())
	require.NoError(t, err)

	result, err := svc.Convert(ctx, FamilyQuote, quote.ID, FamilyInvoice)
	require.NoError(t, err)

	target := result.Target
	require.Equal(t, "INV-00001", target.Number)
	require.Equal(t, StatusPending, target.Status)
	require.Equal(t, quote.Total.StringFixed(2), target.Total.StringFixed(2))
	require.True(t, target.AmountPaid.IsZero())
	require.Equal(t, FamilyQuote, target.SourceType)
	require.Equal(t, quote.ID, target.SourceID)
	require.Equal(t, quote.Number, target.SourceNumber)

	source := result.Source
	require.Equal(t, StatusConverted, source.Status)
	require.Equal(t, target.ID, source.ConvertedTo)
	require.Equal(t, FamilyInvoice, source.ConvertedToFamily)
	require.Equal(t, "converted", source.ActivityLog[len(source.ActivityLog)-1].Action)
}

func TestConvertPurchaseOrderToBill(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	req := quoteRequest()
	req.CounterpartyID = "vend-1"
	po, err := svc.CreateDocument(ctx, FamilyPurchaseOrder, req)
	require.NoError(t, err)
	require.Equal(t, "Bharat Steel", po.CounterpartyName)

	result, err := svc.Convert(ctx, FamilyPurchaseOrder, po.ID, FamilyBill)
	require.NoError(t, err)

	require.Equal(t, "BILL-1", result.Target.Number)
	require.Equal(t, StatusOpen, result.Target.Status)
	require.Equal(t, StatusClosed, result.Source.Status)
}

func TestConvertRejectsIllegalTarget(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	quote, err := svc.CreateDocument(ctx, FamilyQuote, quoteRequest())
	require.NoError(t, err)

	_, err = svc.Convert(ctx, FamilyQuote, quote.ID, FamilyBill)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestConvertRejectsAlreadyConverted(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore(), ServiceConfig{})

	quote, err := svc.CreateDocument(ctx, FamilyQuote, quoteRequest())
	require.NoError(t, err)
	_, err = svc.Convert(ctx, FamilyQuote, quote.ID, FamilyInvoice)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, FamilyQuote, quote.ID, FamilyInvoice)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestConvertRemovesTargetWhenSourceSaveFails(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore()
	svc := newTestService(st, ServiceConfig{})

	quote, err := svc.CreateDocument(ctx, FamilyQuote, quoteRequest())
	require.NoError(t, err)

	st.failWritesOn("quote", errors.New("disk full"))

	_, err = svc.Convert(ctx, FamilyQuote, quote.ID, FamilyInvoice)
	require.Error(t, err)

	invoices, _, err := svc.ListDocuments(ctx, FamilyInvoice, ListDocumentsRequest{})
	require.NoError(t, err)
	require.Empty(t, invoices)
}
