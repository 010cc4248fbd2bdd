package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a document-level discount value is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFlat    DiscountType = "flat"
)

// LineItem is immutable data owned by its parent document. TaxAmount and
// Amount are derived by the calculator, never taken from the caller.
type LineItem struct {
	ItemID      string          `json:"itemId,omitempty"`
	Description string          `json:"description"`
	Account     string          `json:"account,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TaxCode     string          `json:"taxCode"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Amount      decimal.Decimal `json:"amount"`
}

// ActivityEntry is one line of the append-only per-document audit trail.
type ActivityEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	User        string    `json:"user"`
}

// PaymentApplication records one payment or refund applied to a document.
type PaymentApplication struct {
	PaymentID string          `json:"paymentId"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode,omitempty"`
	Reference string          `json:"reference,omitempty"`
	IsRefund  bool            `json:"isRefund,omitempty"`
	Date      time.Time       `json:"date"`
}

// Document is the common shape shared by every family. Monetary fields are
// derived; the running balances obey balanceDue == max(0, total - amountPaid)
// after every operation.
type Document struct {
	ID               string          `json:"id"`
	Family           Family          `json:"family"`
	Number           string          `json:"number"`
	CounterpartyID   string          `json:"counterpartyId"`
	CounterpartyName string          `json:"counterpartyName"`
	BillingAddress   string          `json:"billingAddress,omitempty"`
	ShippingAddress  string          `json:"shippingAddress,omitempty"`
	Lines            []LineItem      `json:"lines"`
	SubTotal         decimal.Decimal `json:"subTotal"`
	DiscountType     DiscountType    `json:"discountType,omitempty"`
	DiscountValue    decimal.Decimal `json:"discountValue"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	Adjustment       decimal.Decimal `json:"adjustment"`
	Total            decimal.Decimal `json:"total"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	AmountRefunded   decimal.Decimal `json:"amountRefunded"`
	BalanceDue       decimal.Decimal `json:"balanceDue"`
	CreditsApplied   decimal.Decimal `json:"creditsApplied"`
	CreditsRemaining decimal.Decimal `json:"creditsRemaining"`
	Status           Status          `json:"status"`
	Notes            string          `json:"notes,omitempty"`

	// Provenance. SourceID points at the predecessor; ConvertedTo at the
	// successor once this document has been converted.
	SourceType        Family `json:"sourceType,omitempty"`
	SourceID          string `json:"sourceId,omitempty"`
	SourceNumber      string `json:"sourceNumber,omitempty"`
	ConvertedTo       string `json:"convertedTo,omitempty"`
	ConvertedToFamily Family `json:"convertedToFamily,omitempty"`

	Payments    []PaymentApplication `json:"payments,omitempty"`
	ActivityLog []ActivityEntry      `json:"activityLog"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppliedInvoice snapshots one document a ledger payment covers.
type AppliedInvoice struct {
	InvoiceID     string          `json:"invoiceId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	AppliedAmount decimal.Decimal `json:"appliedAmount"`
}

// PaymentStatus is the state of a payments-received ledger record.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Payment is a record in the payments-received ledger. Amount is signed:
// positive for a payment, negative for a refund mirror.
type Payment struct {
	ID            string           `json:"id"`
	Number        string           `json:"number"`
	Amount        decimal.Decimal  `json:"amount"`
	Mode          string           `json:"mode,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	AppliedTo     []AppliedInvoice `json:"appliedInvoices"`
	Status        PaymentStatus    `json:"status"`
	IsRefund      bool             `json:"isRefund,omitempty"`
	RefundOf      string           `json:"refundOf,omitempty"`
	AmountInWords string           `json:"amountInWords"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ============================================================================
// REQUEST DTOS
// ============================================================================

type LineItemRequest struct {
	ItemID      string          `json:"itemId,omitempty"`
	Description string          `json:"description" validate:"required,max=500"`
	Account     string          `json:"account,omitempty" validate:"omitempty,max=100"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TaxCode     string          `json:"taxCode,omitempty" validate:"omitempty,max=20"`
}

type CreateDocumentRequest struct {
	CounterpartyID   string            `json:"counterpartyId" validate:"required,max=100"`
	CounterpartyName string            `json:"counterpartyName,omitempty" validate:"omitempty,max=200"`
	BillingAddress   string            `json:"billingAddress,omitempty"`
	ShippingAddress  string            `json:"shippingAddress,omitempty"`
	Lines            []LineItemRequest `json:"lines" validate:"required,min=1,dive"`
	DiscountType     DiscountType      `json:"discountType,omitempty" validate:"omitempty,oneof=percent flat"`
	DiscountValue    decimal.Decimal   `json:"discountValue"`
	Adjustment       decimal.Decimal   `json:"adjustment"`
	Notes            string            `json:"notes,omitempty"`
}

type UpdateDocumentRequest struct {
	CounterpartyID   *string            `json:"counterpartyId,omitempty" validate:"omitempty,max=100"`
	CounterpartyName *string            `json:"counterpartyName,omitempty" validate:"omitempty,max=200"`
	BillingAddress   *string            `json:"billingAddress,omitempty"`
	ShippingAddress  *string            `json:"shippingAddress,omitempty"`
	Lines            *[]LineItemRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
	DiscountType     *DiscountType      `json:"discountType,omitempty" validate:"omitempty,oneof=percent flat"`
	DiscountValue    *decimal.Decimal   `json:"discountValue,omitempty"`
	Adjustment       *decimal.Decimal   `json:"adjustment,omitempty"`
	Notes            *string            `json:"notes,omitempty"`
}

type SetStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode,omitempty" validate:"omitempty,max=50"`
	Reference string          `json:"reference,omitempty" validate:"omitempty,max=200"`
}

type RefundRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty" validate:"omitempty,max=500"`
	PaymentID string          `json:"paymentId,omitempty"`
}

type ConvertRequest struct {
	TargetFamily Family `json:"targetFamily" validate:"required"`
}

type ApplyCreditRequest struct {
	TargetID string          `json:"targetId" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// ConversionResult returns both halves of a conversion.
type ConversionResult struct {
	Source *Document `json:"source"`
	Target *Document `json:"target"`
}

// ListDocumentsRequest filters a family listing.
type ListDocumentsRequest struct {
	Status *Status `json:"status,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}
