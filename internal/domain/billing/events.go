package billing

import (
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
	EventTypeInvoiceSettled       = "InvoiceSettled"
	EventTypeInvoiceDeleted       = "InvoiceDeleted"
)

// InvoiceCreatedEvent is published when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Number    string          `json:"number"`
	ClientID  uuid.UUID       `json:"client_id"`
	TotalTTC  decimal.Decimal `json:"total_ttc"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(invoice *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, invoice.ID, invoice.TenantID),
		InvoiceID:       invoice.ID,
		Number:          invoice.Number,
		ClientID:        invoice.ClientID,
		TotalTTC:        invoice.TotalTTC,
	}
}

// InvoiceStatusChangedEvent is published when an invoice's status changes
// without triggering settlement
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID     `json:"invoice_id"`
	OldStatus InvoiceStatus `json:"old_status"`
	NewStatus InvoiceStatus `json:"new_status"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(tenantID, invoiceID uuid.UUID, oldStatus, newStatus InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, AggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// InvoiceSettledEvent is published when the pending→paid edge fires and
// settlement side effects have been applied
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID `json:"invoice_id"`
	SalesCount int       `json:"sales_count"`
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(tenantID, invoiceID uuid.UUID, salesCount int) *InvoiceSettledEvent {
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSettled, AggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		SalesCount:      salesCount,
	}
}

// InvoiceDeletedEvent is published after an invoice and its dependent rows
// have been removed
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
}

// NewInvoiceDeletedEvent creates a new InvoiceDeletedEvent
func NewInvoiceDeletedEvent(tenantID, invoiceID uuid.UUID, number string) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, AggregateTypeInvoice, invoiceID, tenantID),
		InvoiceID:       invoiceID,
		Number:          number,
	}
}
