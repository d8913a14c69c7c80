package billing

import (
	"context"

	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SettlementResult reports what a successful settlement did
type SettlementResult struct {
	// Settled is false when the invoice was already paid; no side effects ran.
	Settled bool
	// Sales are the ledger rows created by this settlement.
	Sales []Sale
	// Decrements are the stock adjustments applied by this settlement.
	Decrements []StockDecrement
}

// InvoiceRepository defines the interface for invoice persistence.
// Settle and DeleteCascade run multi-row operations inside a single
// database transaction.
type InvoiceRepository interface {
	// FindByIDForTenant finds an invoice with its items within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindAllForTenant finds all invoices for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// CountForTenant counts invoices for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save persists the invoice header and its items in one transaction
	Save(ctx context.Context, invoice *Invoice) error

	// UpdateStatus stores a non-settling status value (pending or
	// partially-settled, or paid→paid) without side effects
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status InvoiceStatus) error

	// Settle runs the guarded pending→paid transition. The edge is detected
	// by an atomic conditional update (set paid where status is not paid);
	// when it fires, stock deduction and sales materialization run in the
	// same transaction. When the invoice is already paid, Settled is false
	// and nothing is written.
	Settle(ctx context.Context, tenantID, id uuid.UUID) (*SettlementResult, error)

	// DeleteCascade removes the invoice's sales, then its items, then the
	// invoice row, in one transaction. Stock is not restored.
	DeleteCascade(ctx context.Context, tenantID, id uuid.UUID) error
}

// SaleRepository defines the read-side interface for the sales ledger.
// Sales are written only by InvoiceRepository.Settle and deleted only by
// InvoiceRepository.DeleteCascade.
type SaleRepository interface {
	// FindByIDForTenant finds a sale by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindByInvoice finds all sales materialized from one invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Sale, error)

	// FindAllForTenant finds all sales for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// CountForTenant counts sales for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// DocumentRenderer renders a fully computed invoice (items and totals
// resolved) into a display document. Implementations live outside the core;
// the core never depends on rendering output.
type DocumentRenderer interface {
	Render(ctx context.Context, invoice *Invoice) ([]byte, error)
}
