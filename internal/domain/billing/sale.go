package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one immutable row of the sales ledger, derived from a catalog
// line item at the moment its invoice settles. Sales are never updated;
// they are deleted only when their invoice is deleted.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	PriceHT     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalHT     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSaleFromItem copies a catalog line item into a sales ledger row.
// The caller guarantees item.IsCatalog().
func NewSaleFromItem(invoice *Invoice, item *InvoiceItem) Sale {
	return Sale{
		ID:          uuid.New(),
		TenantID:    invoice.TenantID,
		InvoiceID:   invoice.ID,
		ProductID:   *item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		PriceHT:     item.PriceHT,
		TotalHT:     item.TotalHT,
		CreatedAt:   time.Now().UTC(),
	}
}
