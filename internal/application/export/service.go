package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"github.com/gescom/backend/internal/domain/billing"
	"github.com/gescom/backend/internal/domain/catalog"
	"github.com/gescom/backend/internal/domain/partner"
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Entity names accepted by the export service
const (
	EntityClients    = "clients"
	EntityCategories = "categories"
	EntityProducts   = "products"
	EntityInvoices   = "invoices"
	EntitySales      = "sales"
)

// pageSize is the batch size used when draining an entity table
const pageSize = 500

// Service serializes a tenant's data as CSV, one fixed header per entity
type Service struct {
	clientRepo   partner.ClientRepository
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	invoiceRepo  billing.InvoiceRepository
	saleRepo     billing.SaleRepository
}

// NewService creates a new export Service
func NewService(
	clientRepo partner.ClientRepository,
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	invoiceRepo billing.InvoiceRepository,
	saleRepo billing.SaleRepository,
) *Service {
	return &Service{
		clientRepo:   clientRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		saleRepo:     saleRepo,
	}
}

// Export serializes one entity type for a tenant. The returned bytes are a
// complete CSV document with a header row.
func (s *Service) Export(ctx context.Context, tenantID uuid.UUID, entity string) ([]byte, error) {
	switch entity {
	case EntityClients:
		return s.exportClients(ctx, tenantID)
	case EntityCategories:
		return s.exportCategories(ctx, tenantID)
	case EntityProducts:
		return s.exportProducts(ctx, tenantID)
	case EntityInvoices:
		return s.exportInvoices(ctx, tenantID)
	case EntitySales:
		return s.exportSales(ctx, tenantID)
	default:
		return nil, shared.NewDomainError("INVALID_ENTITY", "Unknown export entity: "+entity)
	}
}

func (s *Service) exportClients(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "name", "email", "phone", "address", "company", "created_at"}); err != nil {
		return nil, err
	}

	filter := drainFilter()
	for {
		clients, err := s.clientRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for i := range clients {
			c := &clients[i]
			if err := w.Write([]string{
				c.ID.String(), c.Name, c.Email, c.Phone, c.Address, c.Company,
				c.CreatedAt.Format("2006-01-02"),
			}); err != nil {
				return nil, err
			}
		}
		if len(clients) < filter.PageSize {
			break
		}
		filter.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) exportCategories(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "name", "description", "created_at"}); err != nil {
		return nil, err
	}

	filter := drainFilter()
	for {
		categories, err := s.categoryRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for i := range categories {
			c := &categories[i]
			if err := w.Write([]string{
				c.ID.String(), c.Name, c.Description, c.CreatedAt.Format("2006-01-02"),
			}); err != nil {
				return nil, err
			}
		}
		if len(categories) < filter.PageSize {
			break
		}
		filter.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) exportProducts(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "name", "description", "price_ht", "stock", "category_id", "created_at"}); err != nil {
		return nil, err
	}

	filter := drainFilter()
	for {
		products, err := s.productRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for i := range products {
			p := &products[i]
			categoryID := ""
			if p.CategoryID != nil {
				categoryID = p.CategoryID.String()
			}
			if err := w.Write([]string{
				p.ID.String(), p.Name, p.Description, p.PriceHT.StringFixed(2),
				strconv.Itoa(p.Stock), categoryID, p.CreatedAt.Format("2006-01-02"),
			}); err != nil {
				return nil, err
			}
		}
		if len(products) < filter.PageSize {
			break
		}
		filter.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) exportInvoices(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{
		"id", "number", "client_name", "status", "tva_rate",
		"total_ht", "total_tva", "total_ttc", "due_date", "created_at",
	}); err != nil {
		return nil, err
	}

	filter := drainFilter()
	for {
		invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for i := range invoices {
			inv := &invoices[i]
			dueDate := ""
			if inv.DueDate != nil {
				dueDate = inv.DueDate.Format("2006-01-02")
			}
			if err := w.Write([]string{
				inv.ID.String(), inv.Number, inv.ClientName, inv.Status.String(),
				strconv.Itoa(int(inv.TvaRate)),
				inv.TotalHT.StringFixed(2), inv.TotalTVA.StringFixed(2), inv.TotalTTC.StringFixed(2),
				dueDate, inv.CreatedAt.Format("2006-01-02"),
			}); err != nil {
				return nil, err
			}
		}
		if len(invoices) < filter.PageSize {
			break
		}
		filter.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) exportSales(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{
		"id", "invoice_id", "product_id", "product_name",
		"quantity", "price_ht", "total_ht", "created_at",
	}); err != nil {
		return nil, err
	}

	filter := drainFilter()
	for {
		sales, err := s.saleRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		for i := range sales {
			sale := &sales[i]
			if err := w.Write([]string{
				sale.ID.String(), sale.InvoiceID.String(), sale.ProductID.String(), sale.ProductName,
				strconv.Itoa(sale.Quantity), sale.PriceHT.StringFixed(2), sale.TotalHT.StringFixed(2),
				sale.CreatedAt.Format("2006-01-02"),
			}); err != nil {
				return nil, err
			}
		}
		if len(sales) < filter.PageSize {
			break
		}
		filter.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drainFilter() shared.Filter {
	filter := shared.DefaultFilter()
	filter.PageSize = pageSize
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"
	return filter
}
