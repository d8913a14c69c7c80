package billing

import (
	"time"

	"github.com/gescom/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceItemInput is one line of a create-invoice request. Lines with
// a product id become catalog items: name and, unless overridden, unit price
// are snapshotted from the product. Lines without a product id are ad-hoc
// and must carry their own name and price.
type CreateInvoiceItemInput struct {
	ProductID *uuid.UUID       `json:"product_id"`
	Name      string           `json:"name" binding:"omitempty,min=1,max=200"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	PriceHT   *decimal.Decimal `json:"price_ht"`
}

// CreateInvoiceRequest represents a request to create an invoice with its
// line items in one operation
type CreateInvoiceRequest struct {
	Number   string                   `json:"number" binding:"required,min=1,max=50"`
	ClientID uuid.UUID                `json:"client_id" binding:"required"`
	TvaRate  int                      `json:"tva_rate" binding:"required,taxrate"`
	DueDate  *time.Time               `json:"due_date"`
	Notes    string                   `json:"notes"`
	Items    []CreateInvoiceItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest represents a partial update of invoice header fields.
// Line items and totals are immutable after creation.
type UpdateInvoiceRequest struct {
	Number       *string    `json:"number" binding:"omitempty,min=1,max=50"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
	Notes        *string    `json:"notes"`
}

// UpdateInvoiceStatusRequest represents a status change request
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=pending paid partially-settled"`
	ClientID *uuid.UUID `form:"client_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleListFilter represents filter options for the sales list
type SaleListFilter struct {
	InvoiceID *uuid.UUID `form:"invoice_id"`
	ProductID *uuid.UUID `form:"product_id"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Kind        string          `json:"kind"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	PriceHT     decimal.Decimal `json:"price_ht"`
	TotalHT     decimal.Decimal `json:"total_ht"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID         uuid.UUID             `json:"id"`
	TenantID   uuid.UUID             `json:"tenant_id"`
	Number     string                `json:"number"`
	ClientID   uuid.UUID             `json:"client_id"`
	ClientName string                `json:"client_name"`
	Status     string                `json:"status"`
	TvaRate    int                   `json:"tva_rate"`
	TotalHT    decimal.Decimal       `json:"total_ht"`
	TotalTVA   decimal.Decimal       `json:"total_tva"`
	TotalTTC   decimal.Decimal       `json:"total_ttc"`
	DueDate    *time.Time            `json:"due_date,omitempty"`
	Notes      string                `json:"notes,omitempty"`
	Items      []InvoiceItemResponse `json:"items"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// SaleResponse represents a sales ledger row in API responses
type SaleResponse struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	PriceHT     decimal.Decimal `json:"price_ht"`
	TotalHT     decimal.Decimal `json:"total_ht"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(invoice.Items))
	for i := range invoice.Items {
		item := &invoice.Items[i]
		items[i] = InvoiceItemResponse{
			ID:          item.ID,
			Kind:        string(item.Kind),
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceHT:     item.PriceHT,
			TotalHT:     item.TotalHT,
		}
	}
	return InvoiceResponse{
		ID:         invoice.ID,
		TenantID:   invoice.TenantID,
		Number:     invoice.Number,
		ClientID:   invoice.ClientID,
		ClientName: invoice.ClientName,
		Status:     invoice.Status.String(),
		TvaRate:    int(invoice.TvaRate),
		TotalHT:    invoice.TotalHT,
		TotalTVA:   invoice.TotalTVA,
		TotalTTC:   invoice.TotalTTC,
		DueDate:    invoice.DueDate,
		Notes:      invoice.Notes,
		Items:      items,
		CreatedAt:  invoice.CreatedAt,
		UpdatedAt:  invoice.UpdatedAt,
	}
}

// ToSaleResponse converts a domain sale to a response DTO
func ToSaleResponse(sale *billing.Sale) SaleResponse {
	return SaleResponse{
		ID:          sale.ID,
		TenantID:    sale.TenantID,
		InvoiceID:   sale.InvoiceID,
		ProductID:   sale.ProductID,
		ProductName: sale.ProductName,
		Quantity:    sale.Quantity,
		PriceHT:     sale.PriceHT,
		TotalHT:     sale.TotalHT,
		CreatedAt:   sale.CreatedAt,
	}
}
