package billing

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// Status is a document lifecycle state. The set of legal values depends on
// the document family.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusAccepted      Status = "ACCEPTED"
	StatusDeclined      Status = "DECLINED"
	StatusConverted     Status = "CONVERTED"
	StatusConfirmed     Status = "CONFIRMED"
	StatusClosed        Status = "CLOSED"
	StatusPending       Status = "PENDING"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusOpen          Status = "OPEN"
	StatusOverdue       Status = "OVERDUE"
	StatusVoid          Status = "VOID"
	StatusIssued        Status = "ISSUED"
	StatusCancelled     Status = "CANCELLED"
	StatusDelivered     Status = "DELIVERED"
	StatusActive        Status = "ACTIVE"
	StatusExpired       Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

// familyStatuses enumerates the recognized statuses per family.
var familyStatuses = map[Family][]Status{
	FamilyQuote:         {StatusDraft, StatusSent, StatusAccepted, StatusDeclined, StatusConverted},
	FamilySalesOrder:    {StatusDraft, StatusConfirmed, StatusClosed},
	FamilyInvoice:       {StatusPending, StatusSent, StatusPartiallyPaid, StatusPaid},
	FamilyBill:          {StatusOpen, StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusVoid},
	FamilyCreditNote:    {StatusOpen, StatusClosed, StatusVoid},
	FamilyVendorCredit:  {StatusOpen, StatusClosed, StatusVoid},
	FamilyChallan:       {StatusDraft, StatusDelivered, StatusClosed},
	FamilyPurchaseOrder: {StatusDraft, StatusIssued, StatusClosed, StatusCancelled},
	FamilyEWayBill:      {StatusActive, StatusCancelled, StatusExpired},
}

// initialStatus is assigned on document creation.
var initialStatus = map[Family]Status{
	FamilyQuote:         StatusDraft,
	FamilySalesOrder:    StatusDraft,
	FamilyInvoice:       StatusPending,
	FamilyBill:          StatusOpen,
	FamilyCreditNote:    StatusOpen,
	FamilyVendorCredit:  StatusOpen,
	FamilyChallan:       StatusDraft,
	FamilyPurchaseOrder: StatusDraft,
	FamilyEWayBill:      StatusActive,
}

// transitions holds the directed edges enforced when strict mode is on.
// Payment and refund side effects write statuses directly and are not
// subject to this table.
var transitions = map[Family]map[Status][]Status{
	FamilyQuote: {
		StatusDraft:    {StatusSent, StatusAccepted, StatusDeclined},
		StatusSent:     {StatusAccepted, StatusDeclined},
		StatusAccepted: {StatusConverted},
	},
	FamilySalesOrder: {
		StatusDraft:     {StatusConfirmed},
		StatusConfirmed: {StatusClosed},
	},
	FamilyInvoice: {
		StatusPending:       {StatusSent},
		StatusSent:          {StatusPartiallyPaid, StatusPaid},
		StatusPartiallyPaid: {StatusPaid},
	},
	FamilyBill: {
		StatusOpen:          {StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusVoid},
		StatusOverdue:       {StatusPartiallyPaid, StatusPaid, StatusVoid},
		StatusPartiallyPaid: {StatusPaid},
	},
	FamilyCreditNote: {
		StatusOpen: {StatusClosed, StatusVoid},
	},
	FamilyVendorCredit: {
		StatusOpen: {StatusClosed, StatusVoid},
	},
	FamilyChallan: {
		StatusDraft:     {StatusDelivered, StatusClosed},
		StatusDelivered: {StatusClosed},
	},
	FamilyPurchaseOrder: {
		StatusDraft:  {StatusIssued, StatusCancelled},
		StatusIssued: {StatusClosed, StatusCancelled},
	},
	FamilyEWayBill: {
		StatusActive: {StatusCancelled, StatusExpired},
	},
}

// convertedStatus is the terminal state forced onto a conversion source.
var convertedStatus = map[Family]Status{
	FamilyQuote:         StatusConverted,
	FamilySalesOrder:    StatusClosed,
	FamilyChallan:       StatusClosed,
	FamilyPurchaseOrder: StatusClosed,
}

// statusPhrases feeds activity-log descriptions for common transitions.
var statusPhrases = map[Status]string{
	StatusSent:          "Document sent to counterparty",
	StatusAccepted:      "Quote accepted by customer",
	StatusDeclined:      "Quote declined by customer",
	StatusConverted:     "Document converted",
	StatusConfirmed:     "Order confirmed",
	StatusClosed:        "Document closed",
	StatusPartiallyPaid: "Partial payment recorded",
	StatusPaid:          "Marked as paid in full",
	StatusVoid:          "Document voided",
	StatusIssued:        "Purchase order issued",
	StatusCancelled:     "Document cancelled",
	StatusDelivered:     "Delivery completed",
}

// StatusesFor exposes the recognized statuses of a family.
func StatusesFor(f Family) []Status {
	return familyStatuses[f]
}

// TransitionsFor exposes the strict-mode transition edges of a family, so a
// caller can inspect or render the lifecycle as data.
func TransitionsFor(f Family) map[Status][]Status {
	return transitions[f]
}

// InitialStatusFor returns the status assigned at creation.
func InitialStatusFor(f Family) Status {
	return initialStatus[f]
}

func validStatus(f Family, s Status) error {
	if !lo.Contains(familyStatuses[f], s) {
		return fmt.Errorf("%w: status %s not recognized for %s", shared.ErrValidation, s, f)
	}
	return nil
}

func canTransition(f Family, from, to Status) bool {
	targets, ok := transitions[f][from]
	if !ok {
		return false
	}
	return lo.Contains(targets, to)
}

func phraseFor(s Status) string {
	if phrase, ok := statusPhrases[s]; ok {
		return phrase
	}
	return fmt.Sprintf("Status changed to %s", s)
}
