package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

var testInstant = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		family string
		n      int64
		want   string
	}{
		{"quote", 1, "QT-000001"},
		{"salesorder", 12, "SO-00012"},
		{"invoice", 1, "INV-00001"},
		{"challan", 7, "DC-00007"},
		{"purchaseorder", 1, "PO-2025-0001"},
		{"bill", 1, "BILL-1"},
		{"bill", 42, "BILL-42"},
		{"creditnote", 3, "CN-000003"},
		{"vendorcredit", 3, "VC-000003"},
		{"ewaybill", 9, "EWB-000009"},
		{"payments", 15, "PAY-15"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatNumber(tc.family, tc.n, testInstant))
	}
}

func TestSequenceGeneratorMonotonic(t *testing.T) {
	ctx := context.Background()
	gen := NewSequenceGenerator(newMemoryStore(), shared.FixedClock{At: testInstant})

	first, n1, err := gen.Next(ctx, "quote")
	require.NoError(t, err)
	second, n2, err := gen.Next(ctx, "quote")
	require.NoError(t, err)

	require.Equal(t, "QT-000001", first)
	require.Equal(t, "QT-000002", second)
	require.Equal(t, n1+1, n2)
}

func TestSequenceGeneratorFamiliesIndependent(t *testing.T) {
	ctx := context.Background()
	gen := NewSequenceGenerator(newMemoryStore(), shared.FixedClock{At: testInstant})

	quote, _, err := gen.Next(ctx, "quote")
	require.NoError(t, err)
	invoice, _, err := gen.Next(ctx, "invoice")
	require.NoError(t, err)

	require.Equal(t, "QT-000001", quote)
	require.Equal(t, "INV-00001", invoice)
}

func TestSequenceGeneratorPeekDoesNotConsume(t *testing.T) {
	ctx := context.Background()
	gen := NewSequenceGenerator(newMemoryStore(), shared.FixedClock{At: testInstant})

	peeked, err := gen.Peek(ctx, "invoice")
	require.NoError(t, err)
	require.Equal(t, "INV-00001", peeked)

	again, err := gen.Peek(ctx, "invoice")
	require.NoError(t, err)
	require.Equal(t, peeked, again)

	issued, _, err := gen.Next(ctx, "invoice")
	require.NoError(t, err)
	require.Equal(t, peeked, issued)
}
