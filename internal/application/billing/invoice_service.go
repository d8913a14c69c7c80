package billing

import (
	"context"

	"github.com/gescom/backend/internal/domain/billing"
	"github.com/gescom/backend/internal/domain/catalog"
	"github.com/gescom/backend/internal/domain/partner"
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceService handles the invoice lifecycle: creation with computed
// totals, the guarded settlement transition, header updates and the
// deletion cascade.
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	clientRepo     partner.ClientRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	clientRepo partner.ClientRepository,
	productRepo catalog.ProductRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a pending invoice with its line items in one operation.
// The client and every referenced product must resolve within the tenant;
// catalog lines snapshot the product name and, unless the request overrides
// it, the product price.
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID)
	if err != nil {
		return nil, err
	}

	rate := billing.TaxRate(req.TvaRate)
	if !rate.IsValid() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be one of 3, 5, 10, 15, 18, 21")
	}

	products, err := s.resolveProducts(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]*billing.InvoiceItem, 0, len(req.Items))
	for _, input := range req.Items {
		item, err := buildItem(input, products)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	invoice, err := billing.NewInvoice(tenantID, req.Number, client.ID, client.Name, rate, items)
	if err != nil {
		return nil, err
	}
	if req.DueDate != nil || req.Notes != "" {
		patch := billing.InvoicePatch{DueDate: req.DueDate}
		if req.Notes != "" {
			patch.Notes = &req.Notes
		}
		if err := invoice.Apply(patch); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// resolveProducts loads the catalog products referenced by the request
// lines, keyed by id. A reference that does not resolve within the tenant
// fails the whole request.
func (s *InvoiceService) resolveProducts(ctx context.Context, tenantID uuid.UUID, inputs []CreateInvoiceItemInput) (map[uuid.UUID]catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool)
	for _, input := range inputs {
		if input.ProductID == nil || seen[*input.ProductID] {
			continue
		}
		seen[*input.ProductID] = true
		ids = append(ids, *input.ProductID)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]catalog.Product{}, nil
	}

	products, err := s.productRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.ErrNotFound
		}
	}
	return byID, nil
}

func buildItem(input CreateInvoiceItemInput, products map[uuid.UUID]catalog.Product) (*billing.InvoiceItem, error) {
	if input.ProductID == nil {
		if input.PriceHT == nil {
			return nil, shared.NewDomainError("INVALID_PRICE", "Ad-hoc line items must carry a unit price")
		}
		return billing.NewAdHocItem(input.Name, input.Quantity, *input.PriceHT)
	}

	product := products[*input.ProductID]
	price := product.PriceHT
	if input.PriceHT != nil {
		price = *input.PriceHT
	}
	return billing.NewCatalogItem(product.ID, product.Name, input.Quantity, price)
}

// GetByID retrieves an invoice with its items
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves a page of invoices
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
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
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = *filter.ClientID
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateStatus changes an invoice's status. Moving to paid runs the guarded
// settlement: the pending→paid edge fires at most once per invoice, and its
// stock deductions and sales rows are written in the same transaction as the
// status flip. Any other valid status is a plain field update; reverting
// from paid restores nothing.
func (s *InvoiceService) UpdateStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceStatusRequest) (*InvoiceResponse, error) {
	status := billing.InvoiceStatus(req.Status)
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status: "+req.Status)
	}

	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	oldStatus := invoice.Status

	if status == billing.InvoiceStatusPaid {
		result, err := s.invoiceRepo.Settle(ctx, tenantID, invoiceID)
		if err != nil {
			return nil, err
		}
		if result.Settled && s.eventPublisher != nil {
			_ = s.eventPublisher.Publish(ctx, billing.NewInvoiceSettledEvent(tenantID, invoiceID, len(result.Sales)))
			for _, d := range result.Decrements {
				_ = s.eventPublisher.Publish(ctx, catalog.NewStockDeductedEvent(tenantID, d.ProductID, invoiceID, d.Quantity))
			}
		}
	} else {
		if err := s.invoiceRepo.UpdateStatus(ctx, tenantID, invoiceID, status); err != nil {
			return nil, err
		}
	}

	if oldStatus != status && s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, billing.NewInvoiceStatusChangedEvent(tenantID, invoiceID, oldStatus, status))
	}

	return s.GetByID(ctx, tenantID, invoiceID)
}

// Update applies a partial update to invoice header fields
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	patch := billing.InvoicePatch{
		Number:       req.Number,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Notes:        req.Notes,
	}
	if err := invoice.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete removes an invoice with its items and derived sales in one
// transaction. Stock deducted by a past settlement is not restored.
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}

	if err := s.invoiceRepo.DeleteCascade(ctx, tenantID, invoiceID); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, billing.NewInvoiceDeletedEvent(tenantID, invoiceID, invoice.Number))
	}
	return nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range invoice.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	invoice.ClearDomainEvents()
}
