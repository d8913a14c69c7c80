package billing

import (
	"context"

	"github.com/gescom/backend/internal/domain/billing"
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleService exposes read access to the sales ledger. Rows are written
// only by invoice settlement and removed only by the invoice deletion
// cascade, so there are no mutating operations here.
type SaleService struct {
	saleRepo billing.SaleRepository
}

// NewSaleService creates a new SaleService
func NewSaleService(saleRepo billing.SaleRepository) *SaleService {
	return &SaleService{saleRepo: saleRepo}
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// ListByInvoice retrieves the sales materialized from one invoice
func (s *SaleService) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]SaleResponse, error) {
	sales, err := s.saleRepo.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	return responses, nil
}

// List retrieves a page of sales
func (s *SaleService) List(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) (*shared.Paginated[SaleResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.InvoiceID != nil {
		domainFilter.Filters["invoice_id"] = *filter.InvoiceID
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}

	sales, err := s.saleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.saleRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}
