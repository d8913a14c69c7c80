package persistence

import (
	"context"
	"errors"

	"github.com/gescom/backend/internal/domain/billing"
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice with its items within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForTenant finds all invoices for a tenant, items included
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.Invoice{}).Preload("Items").Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// CountForTenant counts invoices for a tenant
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(
		r.db.WithContext(ctx).Model(&billing.Invoice{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the invoice header and its items in one transaction
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(invoice).Error
	})
}

// UpdateStatus stores a non-settling status value without side effects
func (r *GormInvoiceRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status billing.InvoiceStatus) error {
	result := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Settle runs the guarded pending→paid transition. The paid edge is claimed
// by a conditional UPDATE; its rows-affected result decides whether the
// settlement side effects run. Everything happens in one transaction: if
// stock deduction or sales materialization fails, the status flip rolls
// back too.
func (r *GormInvoiceRepository) Settle(ctx context.Context, tenantID, id uuid.UUID) (*billing.SettlementResult, error) {
	settlement := &billing.SettlementResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice billing.Invoice
		if err := tx.Preload("Items").
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		claim := tx.Model(&billing.Invoice{}).
			Where("tenant_id = ? AND id = ? AND status <> ?", tenantID, id, billing.InvoiceStatusPaid).
			Update("status", billing.InvoiceStatusPaid)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			// Already paid: the edge fired before, nothing to do.
			return nil
		}

		for _, dec := range invoice.SettlementDecrements() {
			if _, err := deductStock(tx, tenantID, dec.ProductID, dec.Quantity); err != nil {
				return err
			}
			settlement.Decrements = append(settlement.Decrements, dec)
		}

		sales := invoice.MaterializeSales()
		if len(sales) > 0 {
			if err := tx.Create(&sales).Error; err != nil {
				return err
			}
		}
		settlement.Sales = sales
		settlement.Settled = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// DeleteCascade removes the invoice's sales, then its items, then the
// invoice row, in one transaction. Stock deducted by a past settlement is
// not restored.
func (r *GormInvoiceRepository) DeleteCascade(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND invoice_id = ?", tenantID, id).
			Delete(&billing.Sale{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).
			Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}

		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&billing.Invoice{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormInvoiceRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR client_name ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		}
	}
	return query
}
