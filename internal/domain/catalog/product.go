package catalog

import (
	"time"

	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog item with a tax-exclusive unit price and an
// inventory quantity. Stock never goes below zero: any decrement is clamped
// at the data store, not in application memory.
type Product struct {
	shared.TenantAggregateRoot
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	PriceHT     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name string, priceHT decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if priceHT.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		PriceHT:             priceHT.Round(2),
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// ProductPatch enumerates the fields a product update may change
type ProductPatch struct {
	Name        *string
	Description *string
	PriceHT     *decimal.Decimal
	Stock       *int
	CategoryID  *uuid.UUID
	// ClearCategory detaches the product from its category; it wins over CategoryID.
	ClearCategory bool
}

// Apply applies the patch field by field
func (p *Product) Apply(patch ProductPatch) error {
	if patch.Name != nil {
		if err := validateProductName(*patch.Name); err != nil {
			return err
		}
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.PriceHT != nil {
		if patch.PriceHT.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		p.PriceHT = patch.PriceHT.Round(2)
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
		}
		p.Stock = *patch.Stock
	}
	if patch.ClearCategory {
		p.CategoryID = nil
	} else if patch.CategoryID != nil {
		p.CategoryID = patch.CategoryID
	}

	p.UpdatedAt = time.Now().UTC()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// HasCategory returns true if the product has a category assigned
func (p *Product) HasCategory() bool {
	return p.CategoryID != nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
