package masterdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ganesh5491/vyapar-sub000/internal/platform/store"
	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

const (
	collectionCustomers = "customers"
	collectionVendors   = "vendors"
	collectionItems     = "items"
)

// Service provides customer, vendor, and item CRUD over whole-collection
// storage. It also backs the billing engine's counterparty lookups.
type Service struct {
	store    store.Store
	clock    shared.Clock
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(st store.Store, clock shared.Clock) *Service {
	return &Service{store: st, clock: clock, validate: validator.New()}
}

func (s *Service) validateStruct(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return nil
}

func decodeInto[T any](raw json.RawMessage) (*T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode record: %v", shared.ErrPersistence, err)
	}
	return &rec, nil
}

func listRecords[T any](ctx context.Context, st store.Store, family string) ([]T, error) {
	col, err := st.ReadCollection(ctx, family)
	if err != nil {
		return nil, err
	}
	records := make([]T, 0, len(col.Items))
	for _, raw := range col.Items {
		rec, err := decodeInto[T](raw)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func getRecord[T any](ctx context.Context, st store.Store, family, id string, idOf func(T) string) (*T, error) {
	records, err := listRecords[T](ctx, st, family)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if idOf(records[i]) == id {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", shared.ErrNotFound, family, id)
}

func insertRecord[T any](ctx context.Context, st store.Store, family string, rec T) error {
	return st.Update(ctx, family, func(col *store.Collection) error {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: encode record: %v", shared.ErrPersistence, err)
		}
		col.Items = append(col.Items, raw)
		return nil
	})
}

func replaceRecord[T any](ctx context.Context, st store.Store, family, id string, idOf func(T) string, rec T) error {
	return st.Update(ctx, family, func(col *store.Collection) error {
		for i, raw := range col.Items {
			existing, err := decodeInto[T](raw)
			if err != nil {
				return err
			}
			if idOf(*existing) != id {
				continue
			}
			out, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("%w: encode record: %v", shared.ErrPersistence, err)
			}
			col.Items[i] = out
			return nil
		}
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, family, id)
	})
}

func deleteRecord[T any](ctx context.Context, st store.Store, family, id string, idOf func(T) string) error {
	return st.Update(ctx, family, func(col *store.Collection) error {
		for i, raw := range col.Items {
			existing, err := decodeInto[T](raw)
			if err != nil {
				return err
			}
			if idOf(*existing) == id {
				col.Items = append(col.Items[:i], col.Items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, family, id)
	})
}

func customerID(c Customer) string { return c.ID }
func vendorID(v Vendor) string     { return v.ID }
func itemID(i Item) string         { return i.ID }

// CounterpartyName resolves the display name snapshotted onto documents at
// creation time. Kind is "customer" or "vendor".
func (s *Service) CounterpartyName(ctx context.Context, kind, id string) (string, error) {
	switch kind {
	case "vendor":
		vendor, err := getRecord(ctx, s.store, collectionVendors, id, vendorID)
		if err != nil {
			return "", err
		}
		return vendor.Name, nil
	default:
		customer, err := getRecord(ctx, s.store, collectionCustomers, id, customerID)
		if err != nil {
			return "", err
		}
		return customer.Name, nil
	}
}

// ============================================================================
// CUSTOMERS
// ============================================================================

// CreateCustomer creates a new customer.
func (s *Service) CreateCustomer(ctx context.Context, req CreatePartyRequest) (*Customer, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	customer := Customer{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		GSTIN:     req.GSTIN,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := insertRecord(ctx, s.store, collectionCustomers, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &customer, nil
}

// GetCustomer retrieves a customer by ID.
func (s *Service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return getRecord(ctx, s.store, collectionCustomers, id, customerID)
}

// ListCustomers returns all customers.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return listRecords[Customer](ctx, s.store, collectionCustomers)
}

// UpdateCustomer merges a partial payload over an existing customer.
func (s *Service) UpdateCustomer(ctx context.Context, id string, req UpdatePartyRequest) (*Customer, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPartyUpdate(req, &customer.Name, &customer.Email, &customer.Phone, &customer.GSTIN, &customer.Address, &customer.City, &customer.State)
	customer.UpdatedAt = s.clock.Now()
	if err := replaceRecord(ctx, s.store, collectionCustomers, id, customerID, *customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customer, nil
}

// DeleteCustomer removes a customer.
func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.store, collectionCustomers, id, customerID)
}

// ============================================================================
// VENDORS
// ============================================================================

// CreateVendor creates a new vendor.
func (s *Service) CreateVendor(ctx context.Context, req CreatePartyRequest) (*Vendor, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	vendor := Vendor{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		GSTIN:     req.GSTIN,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := insertRecord(ctx, s.store, collectionVendors, vendor); err != nil {
		return nil, fmt.Errorf("create vendor: %w", err)
	}
	return &vendor, nil
}

// GetVendor retrieves a vendor by ID.
func (s *Service) GetVendor(ctx context.Context, id string) (*Vendor, error) {
	return getRecord(ctx, s.store, collectionVendors, id, vendorID)
}

// ListVendors returns all vendors.
func (s *Service) ListVendors(ctx context.Context) ([]Vendor, error) {
	return listRecords[Vendor](ctx, s.store, collectionVendors)
}

// UpdateVendor merges a partial payload over an existing vendor.
func (s *Service) UpdateVendor(ctx context.Context, id string, req UpdatePartyRequest) (*Vendor, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPartyUpdate(req, &vendor.Name, &vendor.Email, &vendor.Phone, &vendor.GSTIN, &vendor.Address, &vendor.City, &vendor.State)
	vendor.UpdatedAt = s.clock.Now()
	if err := replaceRecord(ctx, s.store, collectionVendors, id, vendorID, *vendor); err != nil {
		return nil, fmt.Errorf("update vendor: %w", err)
	}
	return vendor, nil
}

// DeleteVendor removes a vendor.
func (s *Service) DeleteVendor(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.store, collectionVendors, id, vendorID)
}

func applyPartyUpdate(req UpdatePartyRequest, name, email, phone, gstin, address, city, state *string) {
	if req.Name != nil {
		*name = *req.Name
	}
	if req.Email != nil {
		*email = *req.Email
	}
	if req.Phone != nil {
		*phone = *req.Phone
	}
	if req.GSTIN != nil {
		*gstin = *req.GSTIN
	}
	if req.Address != nil {
		*address = *req.Address
	}
	if req.City != nil {
		*city = *req.City
	}
	if req.State != nil {
		*state = *req.State
	}
}

// ============================================================================
// ITEMS
// ============================================================================

// CreateItem creates a new item.
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	item := Item{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		Rate:        req.Rate,
		TaxCode:     req.TaxCode,
		Account:     req.Account,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := insertRecord(ctx, s.store, collectionItems, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return &item, nil
}

// GetItem retrieves an item by ID.
func (s *Service) GetItem(ctx context.Context, id string) (*Item, error) {
	return getRecord(ctx, s.store, collectionItems, id, itemID)
}

// ListItems returns all items.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return listRecords[Item](ctx, s.store, collectionItems)
}

// UpdateItem merges a partial payload over an existing item.
func (s *Service) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*Item, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.Rate != nil {
		item.Rate = *req.Rate
	}
	if req.TaxCode != nil {
		item.TaxCode = *req.TaxCode
	}
	if req.Account != nil {
		item.Account = *req.Account
	}
	item.UpdatedAt = s.clock.Now()
	if err := replaceRecord(ctx, s.store, collectionItems, id, itemID, *item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.store, collectionItems, id, itemID)
}
