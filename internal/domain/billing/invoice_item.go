package billing

import (
	"time"

	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemKind tags a line item as either a catalog sale or an ad-hoc charge.
// Only catalog items carry inventory and sales-ledger effects at settlement;
// the tag makes that rule structural instead of a null check on ProductID.
type ItemKind string

const (
	ItemKindCatalog ItemKind = "catalog"
	ItemKindAdHoc   ItemKind = "ad_hoc"
)

// IsValid checks if the kind is a known ItemKind
func (k ItemKind) IsValid() bool {
	return k == ItemKindCatalog || k == ItemKindAdHoc
}

// InvoiceItem is one immutable line of an invoice. ProductName and PriceHT
// are snapshots captured at creation so historical invoices stay stable when
// the catalog changes.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind        ItemKind        `gorm:"type:varchar(20);not null"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	PriceHT     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalHT     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewCatalogItem creates a line item tied to a catalog product
func NewCatalogItem(productID uuid.UUID, productName string, quantity int, priceHT decimal.Decimal) (*InvoiceItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	item, err := newItem(ItemKindCatalog, productName, quantity, priceHT)
	if err != nil {
		return nil, err
	}
	item.ProductID = &productID
	return item, nil
}

// NewAdHocItem creates a line item not tied to any catalog product.
// Ad-hoc items never deduct stock and never materialize sales.
func NewAdHocItem(name string, quantity int, priceHT decimal.Decimal) (*InvoiceItem, error) {
	return newItem(ItemKindAdHoc, name, quantity, priceHT)
}

func newItem(kind ItemKind, name string, quantity int, priceHT decimal.Decimal) (*InvoiceItem, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Line item name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Line item name cannot exceed 200 characters")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if priceHT.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now().UTC()
	price := priceHT.Round(2)

	return &InvoiceItem{
		ID:          uuid.New(),
		Kind:        kind,
		ProductName: name,
		Quantity:    quantity,
		PriceHT:     price,
		TotalHT:     LineTotal(quantity, price),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsCatalog returns true for items tied to a catalog product
func (i *InvoiceItem) IsCatalog() bool {
	return i.Kind == ItemKindCatalog && i.ProductID != nil
}
