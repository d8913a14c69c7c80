package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedItems(t *testing.T, productID uuid.UUID) []*InvoiceItem {
	t.Helper()
	catalogItem, err := NewCatalogItem(productID, "Produit A", 3, decimal.NewFromInt(1000))
	require.NoError(t, err)
	adHocItem, err := NewAdHocItem("Prestation ponctuelle", 1, decimal.NewFromInt(500))
	require.NoError(t, err)
	return []*InvoiceItem{catalogItem, adHocItem}
}

func TestNewInvoice(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()
	productID := uuid.New()

	t.Run("creates pending invoice with stored totals", func(t *testing.T) {
		invoice, err := NewInvoice(tenantID, "FACT-2026-001", clientID, "Acme SARL", TaxRate18, mixedItems(t, productID))
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusPending, invoice.Status)
		assert.Equal(t, "3500.00", invoice.TotalHT.StringFixed(2))
		assert.Equal(t, "630.00", invoice.TotalTVA.StringFixed(2))
		assert.Equal(t, "4130.00", invoice.TotalTTC.StringFixed(2))
		require.Len(t, invoice.Items, 2)
		for _, item := range invoice.Items {
			assert.Equal(t, invoice.ID, item.InvoiceID)
		}
	})

	t.Run("publishes InvoiceCreated event", func(t *testing.T) {
		invoice, err := NewInvoice(tenantID, "FACT-2026-002", clientID, "Acme SARL", TaxRate18, mixedItems(t, productID))
		require.NoError(t, err)

		events := invoice.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceCreated, events[0].EventType())
	})

	t.Run("fails without items", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "FACT-2026-003", clientID, "Acme SARL", TaxRate18, nil)
		require.Error(t, err)
	})

	t.Run("fails with empty number", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "", clientID, "Acme SARL", TaxRate18, mixedItems(t, productID))
		require.Error(t, err)
	})

	t.Run("fails with nil client", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "FACT-2026-004", uuid.Nil, "Acme SARL", TaxRate18, mixedItems(t, productID))
		require.Error(t, err)
	})

	t.Run("fails with disallowed tax rate", func(t *testing.T) {
		_, err := NewInvoice(tenantID, "FACT-2026-005", clientID, "Acme SARL", TaxRate(7), mixedItems(t, productID))
		require.Error(t, err)
	})
}

func TestInvoiceStatus_IsValid(t *testing.T) {
	assert.True(t, InvoiceStatusPending.IsValid())
	assert.True(t, InvoiceStatusPaid.IsValid())
	assert.True(t, InvoiceStatusPartiallySettled.IsValid())
	assert.False(t, InvoiceStatus("payee").IsValid())
	assert.False(t, InvoiceStatus("en_attente").IsValid())
	assert.False(t, InvoiceStatus("cancelled").IsValid())
}

func TestInvoice_Apply(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()
	productID := uuid.New()

	newInvoice := func(t *testing.T) *Invoice {
		invoice, err := NewInvoice(tenantID, "FACT-2026-010", clientID, "Acme SARL", TaxRate18, mixedItems(t, productID))
		require.NoError(t, err)
		return invoice
	}

	t.Run("patches header fields and leaves totals untouched", func(t *testing.T) {
		invoice := newInvoice(t)
		number := "FACT-2026-010-BIS"
		notes := "Relance envoyée"
		due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

		require.NoError(t, invoice.Apply(InvoicePatch{Number: &number, Notes: &notes, DueDate: &due}))

		assert.Equal(t, "FACT-2026-010-BIS", invoice.Number)
		assert.Equal(t, "Relance envoyée", invoice.Notes)
		require.NotNil(t, invoice.DueDate)
		assert.Equal(t, due, *invoice.DueDate)
		assert.Equal(t, "4130.00", invoice.TotalTTC.StringFixed(2))
	})

	t.Run("clears due date", func(t *testing.T) {
		invoice := newInvoice(t)
		due := time.Now().UTC()
		require.NoError(t, invoice.Apply(InvoicePatch{DueDate: &due}))
		require.NotNil(t, invoice.DueDate)

		require.NoError(t, invoice.Apply(InvoicePatch{ClearDueDate: true}))
		assert.Nil(t, invoice.DueDate)
	})

	t.Run("rejects empty number", func(t *testing.T) {
		invoice := newInvoice(t)
		empty := ""
		require.Error(t, invoice.Apply(InvoicePatch{Number: &empty}))
	})
}

func TestInvoice_SettlementDecrements(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()
	productID := uuid.New()

	invoice, err := NewInvoice(tenantID, "FACT-2026-020", clientID, "Acme SARL", TaxRate18, mixedItems(t, productID))
	require.NoError(t, err)

	decrements := invoice.SettlementDecrements()
	require.Len(t, decrements, 1, "ad-hoc items carry no inventory effect")
	assert.Equal(t, productID, decrements[0].ProductID)
	assert.Equal(t, 3, decrements[0].Quantity)
}

func TestInvoice_MaterializeSales(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()
	productID := uuid.New()

	invoice, err := NewInvoice(tenantID, "FACT-2026-021", clientID, "Acme SARL", TaxRate18, mixedItems(t, productID))
	require.NoError(t, err)

	sales := invoice.MaterializeSales()
	require.Len(t, sales, 1, "no sale for line items lacking a product reference")

	sale := sales[0]
	assert.Equal(t, tenantID, sale.TenantID)
	assert.Equal(t, invoice.ID, sale.InvoiceID)
	assert.Equal(t, productID, sale.ProductID)
	assert.Equal(t, "Produit A", sale.ProductName)
	assert.Equal(t, 3, sale.Quantity)
	assert.Equal(t, "1000.00", sale.PriceHT.StringFixed(2))
	assert.Equal(t, "3000.00", sale.TotalHT.StringFixed(2))
}

func TestInvoiceItem_Constructors(t *testing.T) {
	t.Run("catalog item requires product id", func(t *testing.T) {
		_, err := NewCatalogItem(uuid.Nil, "Produit A", 1, decimal.NewFromInt(10))
		require.Error(t, err)
	})

	t.Run("ad-hoc item has no product reference", func(t *testing.T) {
		item, err := NewAdHocItem("Prestation", 2, decimal.RequireFromString("24.995"))
		require.NoError(t, err)

		assert.Equal(t, ItemKindAdHoc, item.Kind)
		assert.Nil(t, item.ProductID)
		assert.False(t, item.IsCatalog())
		assert.Equal(t, "25.00", item.PriceHT.StringFixed(2), "price snapshot is rounded to 2 decimals")
		assert.Equal(t, "50.00", item.TotalHT.StringFixed(2))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewAdHocItem("Prestation", 0, decimal.NewFromInt(10))
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCatalogItem(uuid.New(), "", 1, decimal.NewFromInt(10))
		require.Error(t, err)
	})
}
