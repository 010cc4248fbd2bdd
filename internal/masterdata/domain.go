package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a customer entity.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Vendor represents a vendor entity.
type Vendor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item represents a sellable product or service.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	TaxCode     string          `json:"taxCode,omitempty"`
	Account     string          `json:"account,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreatePartyRequest covers both customers and vendors.
type CreatePartyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	GSTIN   string `json:"gstin,omitempty" validate:"omitempty,max=20"`
	Address string `json:"address,omitempty" validate:"omitempty,max=500"`
	City    string `json:"city,omitempty" validate:"omitempty,max=100"`
	State   string `json:"state,omitempty" validate:"omitempty,max=100"`
}

// UpdatePartyRequest merges over an existing customer or vendor.
type UpdatePartyRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	GSTIN   *string `json:"gstin,omitempty" validate:"omitempty,max=20"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
}

// CreateItemRequest creates an item.
type CreateItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Unit        string          `json:"unit,omitempty" validate:"omitempty,max=20"`
	Rate        decimal.Decimal `json:"rate"`
	TaxCode     string          `json:"taxCode,omitempty" validate:"omitempty,max=20"`
	Account     string          `json:"account,omitempty" validate:"omitempty,max=100"`
}

// UpdateItemRequest merges over an existing item.
type UpdateItemRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Unit        *string          `json:"unit,omitempty" validate:"omitempty,max=20"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	TaxCode     *string          `json:"taxCode,omitempty" validate:"omitempty,max=20"`
	Account     *string          `json:"account,omitempty" validate:"omitempty,max=100"`
}
