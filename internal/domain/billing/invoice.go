package billing

import (
	"time"

	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	// InvoiceStatusPending is the initial state
	InvoiceStatusPending InvoiceStatus = "pending"
	// InvoiceStatusPaid is the settled state; reaching it for the first time
	// deducts stock and materializes the sales ledger
	InvoiceStatusPaid InvoiceStatus = "paid"
	// InvoiceStatusPartiallySettled is a label-only state with no side effects
	InvoiceStatusPartiallySettled InvoiceStatus = "partially-settled"
)

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusPartiallySettled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s InvoiceStatus) String() string {
	return string(s)
}

// Invoice is the aggregate root of the billing context. It is created with
// its line items in one atomic operation; items are immutable afterwards.
// Totals are computed once at creation and stored.
type Invoice struct {
	shared.TenantAggregateRoot
	Number     string          `gorm:"type:varchar(50);not null;index"`
	ClientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientName string          `gorm:"type:varchar(200);not null"`
	Status     InvoiceStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	TvaRate    TaxRate         `gorm:"not null"`
	TotalHT    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalTVA   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalTTC   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DueDate    *time.Time
	Notes      string        `gorm:"type:text"`
	Items      []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a pending invoice with its line items and computed
// totals. The invoice number is caller-assigned and not guaranteed unique.
func NewInvoice(tenantID uuid.UUID, number string, clientID uuid.UUID, clientName string, rate TaxRate, items []*InvoiceItem) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}

	lines := make([]LineInput, len(items))
	for i, item := range items {
		lines[i] = LineInput{Quantity: item.Quantity, UnitPrice: item.PriceHT}
	}
	totals, err := ComputeTotals(lines, rate)
	if err != nil {
		return nil, err
	}

	invoice := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		ClientID:            clientID,
		ClientName:          clientName,
		Status:              InvoiceStatusPending,
		TvaRate:             rate,
		TotalHT:             totals.TotalHT,
		TotalTVA:            totals.TotalTVA,
		TotalTTC:            totals.TotalTTC,
	}

	invoice.Items = make([]InvoiceItem, len(items))
	for i, item := range items {
		item.InvoiceID = invoice.ID
		invoice.Items[i] = *item
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// InvoicePatch enumerates the header fields an invoice update may change.
// Line items and totals are immutable after creation.
type InvoicePatch struct {
	Number  *string
	DueDate *time.Time
	Notes   *string
	// ClearDueDate removes the due date; it wins over DueDate.
	ClearDueDate bool
}

// Apply applies the patch field by field
func (inv *Invoice) Apply(patch InvoicePatch) error {
	if patch.Number != nil {
		if *patch.Number == "" {
			return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
		}
		if len(*patch.Number) > 50 {
			return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
		}
		inv.Number = *patch.Number
	}
	if patch.Notes != nil {
		inv.Notes = *patch.Notes
	}
	if patch.ClearDueDate {
		inv.DueDate = nil
	} else if patch.DueDate != nil {
		due := patch.DueDate.UTC()
		inv.DueDate = &due
	}

	inv.UpdatedAt = time.Now().UTC()
	inv.IncrementVersion()

	return nil
}

// IsPaid returns true once the invoice has been settled
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// StockDecrement is one product decrement produced by settlement
type StockDecrement struct {
	ProductID uuid.UUID
	Quantity  int
}

// SettlementDecrements returns the stock decrements settlement must apply:
// one per catalog line item, none for ad-hoc items.
func (inv *Invoice) SettlementDecrements() []StockDecrement {
	decrements := make([]StockDecrement, 0, len(inv.Items))
	for _, item := range inv.Items {
		if !item.IsCatalog() {
			continue
		}
		decrements = append(decrements, StockDecrement{
			ProductID: *item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return decrements
}

// MaterializeSales derives the immutable sales rows settlement must record:
// one per catalog line item, copying the snapshots taken at invoice creation.
func (inv *Invoice) MaterializeSales() []Sale {
	sales := make([]Sale, 0, len(inv.Items))
	for _, item := range inv.Items {
		if !item.IsCatalog() {
			continue
		}
		sales = append(sales, NewSaleFromItem(inv, &item))
	}
	return sales
}
