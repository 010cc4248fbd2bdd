package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// CounterpartyDirectory resolves counterparty snapshots at document-creation
// time. Implemented by the masterdata module.
type CounterpartyDirectory interface {
	CounterpartyName(ctx context.Context, kind, id string) (string, error)
}

// ServiceConfig tunes engine behavior.
type ServiceConfig struct {
	// StrictTransitions enforces the per-family transition table on
	// SetStatus. Default is the permissive legacy behavior: any recognized
	// status may be set from any other.
	StrictTransitions bool
}

// Service implements the document lifecycle engine.
type Service struct {
	repo      *DocumentRepository
	payments  *PaymentRepository
	directory CounterpartyDirectory
	clock     shared.Clock
	validate  *validator.Validate
	cfg       ServiceConfig
}

// NewService builds the engine service.
func NewService(repo *DocumentRepository, payments *PaymentRepository, directory CounterpartyDirectory, clock shared.Clock, cfg ServiceConfig) *Service {
	return &Service{
		repo:      repo,
		payments:  payments,
		directory: directory,
		clock:     clock,
		validate:  validator.New(),
		cfg:       cfg,
	}
}

func (s *Service) validateStruct(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return nil
}

func appendActivity(doc *Document, action, description, actor string, at time.Time) {
	doc.ActivityLog = append(doc.ActivityLog, ActivityEntry{
		ID:          uuid.NewString(),
		Timestamp:   at,
		Action:      action,
		Description: description,
		User:        actor,
	})
}

// CreateDocument assigns id, number, initial status, and derived totals, and
// persists the record with one "created" activity entry. Numbers are always
// server-generated; a caller-supplied number is ignored for every family,
// including invoices.
func (s *Service) CreateDocument(ctx context.Context, family Family, req CreateDocumentRequest) (*Document, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	name := req.CounterpartyName
	if s.directory != nil {
		resolved, err := s.directory.CounterpartyName(ctx, family.CounterpartyKind(), req.CounterpartyID)
		if err != nil {
			return nil, fmt.Errorf("resolve counterparty: %w", err)
		}
		name = resolved
	}
	if name == "" {
		return nil, fmt.Errorf("%w: counterparty name required", shared.ErrValidation)
	}

	now := s.clock.Now()
	actor := shared.ActorFromContext(ctx)

	doc := &Document{
		ID:               uuid.NewString(),
		Family:           family,
		CounterpartyID:   req.CounterpartyID,
		CounterpartyName: name,
		BillingAddress:   req.BillingAddress,
		ShippingAddress:  req.ShippingAddress,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
		Adjustment:       req.Adjustment,
		Notes:            req.Notes,
		Status:           InitialStatusFor(family),
		AmountPaid:       decimal.Zero,
		AmountRefunded:   decimal.Zero,
		ActivityLog:      []ActivityEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, lineReq := range req.Lines {
		doc.Lines = append(doc.Lines, ComputeLine(lineReq))
	}
	Recalculate(doc)
	appendActivity(doc, "created", fmt.Sprintf("%s created", family), actor, now)

	if err := s.repo.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("create %s: %w", family, err)
	}
	return doc, nil
}

// UpdateDocument merges a partial payload over the existing record. ID,
// number, and createdAt are preserved; totals are recomputed when lines or
// discount inputs change. An empty payload still refreshes updatedAt.
func (s *Service) UpdateDocument(ctx context.Context, family Family, id string, req UpdateDocumentRequest) (*Document, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	doc, err := s.repo.Get(ctx, family, id)
	if err != nil {
		return nil, err
	}

	if req.CounterpartyID != nil {
		doc.CounterpartyID = *req.CounterpartyID
	}
	if req.CounterpartyName != nil {
		doc.CounterpartyName = *req.CounterpartyName
	}
	if req.BillingAddress != nil {
		doc.BillingAddress = *req.BillingAddress
	}
	if req.ShippingAddress != nil {
		doc.ShippingAddress = *req.ShippingAddress
	}
	if req.Notes != nil {
		doc.Notes = *req.Notes
	}
	if req.DiscountType != nil {
		doc.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		doc.DiscountValue = *req.DiscountValue
	}
	if req.Adjustment != nil {
		doc.Adjustment = *req.Adjustment
	}
	if req.Lines != nil {
		doc.Lines = doc.Lines[:0]
		for _, lineReq := range *req.Lines {
			doc.Lines = append(doc.Lines, ComputeLine(lineReq))
		}
	}
	Recalculate(doc)

	now := s.clock.Now()
	doc.UpdatedAt = now
	appendActivity(doc, "updated", fmt.Sprintf("%s updated", family), shared.ActorFromContext(ctx), now)

	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("update %s: %w", family, err)
	}
	return doc, nil
}

// SetStatus moves a document to the target status and applies that status's
// side effects. In permissive mode any recognized status is accepted; strict
// mode enforces the family's transition table.
func (s *Service) SetStatus(ctx context.Context, family Family, id string, target Status) (*Document, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if err := validStatus(family, target); err != nil {
		return nil, err
	}

	doc, err := s.repo.Get(ctx, family, id)
	if err != nil {
		return nil, err
	}
	if s.cfg.StrictTransitions && doc.Status != target && !canTransition(family, doc.Status, target) {
		return nil, fmt.Errorf("%w: illegal transition %s -> %s for %s", shared.ErrValidation, doc.Status, target, family)
	}

	doc.Status = target
	applyStatusSideEffects(doc, target)

	now := s.clock.Now()
	doc.UpdatedAt = now
	appendActivity(doc, "status", phraseFor(target), shared.ActorFromContext(ctx), now)

	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("set status on %s: %w", family, err)
	}
	return doc, nil
}

// applyStatusSideEffects runs the synchronous per-status hooks. Setting PAID
// on a receivable forces the balances settled.
func applyStatusSideEffects(doc *Document, target Status) {
	if target == StatusPaid && doc.Family.Receivable() {
		doc.AmountPaid = doc.Total
		doc.BalanceDue = decimal.Zero
	}
}

// GetDocument loads one document.
func (s *Service) GetDocument(ctx context.Context, family Family, id string) (*Document, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, family, id)
}

// ListDocuments returns a filtered page of a family, plus the unfiltered
// match count.
func (s *Service) ListDocuments(ctx context.Context, family Family, req ListDocumentsRequest) ([]Document, int, error) {
	if err := family.Validate(); err != nil {
		return nil, 0, err
	}
	if err := s.validateStruct(req); err != nil {
		return nil, 0, err
	}
	docs, err := s.repo.List(ctx, family)
	if err != nil {
		return nil, 0, err
	}
	filtered := docs[:0:0]
	for _, doc := range docs {
		if req.Status != nil && doc.Status != *req.Status {
			continue
		}
		filtered = append(filtered, doc)
	}
	total := len(filtered)
	if req.Offset > 0 {
		if req.Offset >= len(filtered) {
			filtered = nil
		} else {
			filtered = filtered[req.Offset:]
		}
	}
	if req.Limit > 0 && len(filtered) > req.Limit {
		filtered = filtered[:req.Limit]
	}
	return filtered, total, nil
}

// DeleteDocument hard-deletes a record. Deleting the source of a conversion
// is rejected so provenance links never dangle.
func (s *Service) DeleteDocument(ctx context.Context, family Family, id string) error {
	if err := family.Validate(); err != nil {
		return err
	}
	doc, err := s.repo.Get(ctx, family, id)
	if err != nil {
		return err
	}
	if doc.ConvertedTo != "" {
		return fmt.Errorf("%w: document %s was converted to %s and cannot be deleted", shared.ErrValidation, doc.Number, doc.ConvertedToFamily)
	}
	return s.repo.Delete(ctx, family, id)
}
