package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ganesh5491/vyapar-sub000/internal/platform/store"
	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// DocumentRepository maps Document records onto whole-collection storage.
// Every mutation runs inside store.Update, so reads-modify-writes on one
// family are serialized; cross-document safety additionally relies on the
// per-document version counter checked in Save.
type DocumentRepository struct {
	store store.Store
}

// NewDocumentRepository builds the repository.
func NewDocumentRepository(st store.Store) *DocumentRepository {
	return &DocumentRepository{store: st}
}

func decodeDocument(raw json.RawMessage) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %v", shared.ErrPersistence, err)
	}
	return &doc, nil
}

func encodeDocument(doc *Document) (json.RawMessage, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %v", shared.ErrPersistence, err)
	}
	return raw, nil
}

func findDocument(col *store.Collection, id string) (int, *Document, error) {
	for i, raw := range col.Items {
		doc, err := decodeDocument(raw)
		if err != nil {
			return 0, nil, err
		}
		if doc.ID == id {
			return i, doc, nil
		}
	}
	return 0, nil, fmt.Errorf("%w: document %s", shared.ErrNotFound, id)
}

// Get loads one document by id.
func (r *DocumentRepository) Get(ctx context.Context, family Family, id string) (*Document, error) {
	col, err := r.store.ReadCollection(ctx, family.String())
	if err != nil {
		return nil, err
	}
	_, doc, err := findDocument(col, id)
	return doc, err
}

// List returns all documents of a family in insertion order.
func (r *DocumentRepository) List(ctx context.Context, family Family) ([]Document, error) {
	col, err := r.store.ReadCollection(ctx, family.String())
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(col.Items))
	for _, raw := range col.Items {
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Insert appends a new document, allocating its family-scoped number in the
// same collection write. The assigned number and version are set on doc.
func (r *DocumentRepository) Insert(ctx context.Context, doc *Document) error {
	return r.store.Update(ctx, doc.Family.String(), func(col *store.Collection) error {
		number, _ := allocateNumber(col, doc.Family.String(), doc.CreatedAt)
		doc.Number = number
		doc.Version = 1
		raw, err := encodeDocument(doc)
		if err != nil {
			return err
		}
		col.Items = append(col.Items, raw)
		return nil
	})
}

// Save replaces a document, compare-and-swapping on its version. A stale
// version yields ErrConflict and nothing is written.
func (r *DocumentRepository) Save(ctx context.Context, doc *Document) error {
	return r.store.Update(ctx, doc.Family.String(), func(col *store.Collection) error {
		i, current, err := findDocument(col, doc.ID)
		if err != nil {
			return err
		}
		if current.Version != doc.Version {
			return fmt.Errorf("%w: document %s modified concurrently", shared.ErrConflict, doc.ID)
		}
		doc.Version++
		raw, err := encodeDocument(doc)
		if err != nil {
			return err
		}
		col.Items[i] = raw
		return nil
	})
}

// Delete removes a document outright. The family counter is untouched, so
// the deleted number is never reissued.
func (r *DocumentRepository) Delete(ctx context.Context, family Family, id string) error {
	return r.store.Update(ctx, family.String(), func(col *store.Collection) error {
		i, _, err := findDocument(col, id)
		if err != nil {
			return err
		}
		col.Items = append(col.Items[:i], col.Items[i+1:]...)
		return nil
	})
}

// PaymentRepository maps payments-received ledger records onto the payments
// collection.
type PaymentRepository struct {
	store store.Store
}

// NewPaymentRepository builds the repository.
func NewPaymentRepository(st store.Store) *PaymentRepository {
	return &PaymentRepository{store: st}
}

func decodePayment(raw json.RawMessage) (*Payment, error) {
	var p Payment
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: decode payment: %v", shared.ErrPersistence, err)
	}
	return &p, nil
}

// Insert appends a ledger record, allocating its number.
func (r *PaymentRepository) Insert(ctx context.Context, p *Payment) error {
	return r.store.Update(ctx, FamilyPayments, func(col *store.Collection) error {
		number, _ := allocateNumber(col, FamilyPayments, p.CreatedAt)
		p.Number = number
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("%w: encode payment: %v", shared.ErrPersistence, err)
		}
		col.Items = append(col.Items, raw)
		return nil
	})
}

// Get loads one ledger record by id.
func (r *PaymentRepository) Get(ctx context.Context, id string) (*Payment, error) {
	col, err := r.store.ReadCollection(ctx, FamilyPayments)
	if err != nil {
		return nil, err
	}
	for _, raw := range col.Items {
		p, err := decodePayment(raw)
		if err != nil {
			return nil, err
		}
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: payment %s", shared.ErrNotFound, id)
}

// List returns all ledger records in insertion order.
func (r *PaymentRepository) List(ctx context.Context) ([]Payment, error) {
	col, err := r.store.ReadCollection(ctx, FamilyPayments)
	if err != nil {
		return nil, err
	}
	payments := make([]Payment, 0, len(col.Items))
	for _, raw := range col.Items {
		p, err := decodePayment(raw)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, nil
}

// Delete removes a ledger record. Used only to compensate a failed
// cross-collection write; committed ledger entries are never deleted.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Update(ctx, FamilyPayments, func(col *store.Collection) error {
		for i, raw := range col.Items {
			p, err := decodePayment(raw)
			if err != nil {
				return err
			}
			if p.ID == id {
				col.Items = append(col.Items[:i], col.Items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: payment %s", shared.ErrNotFound, id)
	})
}

// MarkRefunded flags an existing ledger record REFUNDED.
func (r *PaymentRepository) MarkRefunded(ctx context.Context, id string, at time.Time) error {
	return r.store.Update(ctx, FamilyPayments, func(col *store.Collection) error {
		for i, raw := range col.Items {
			p, err := decodePayment(raw)
			if err != nil {
				return err
			}
			if p.ID != id {
				continue
			}
			p.Status = PaymentStatusRefunded
			p.UpdatedAt = at
			out, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("%w: encode payment: %v", shared.ErrPersistence, err)
			}
			col.Items[i] = out
			return nil
		}
		return fmt.Errorf("%w: payment %s", shared.ErrNotFound, id)
	})
}
