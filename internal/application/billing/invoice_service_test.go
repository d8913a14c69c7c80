package billing

import (
	"context"
	"testing"

	"github.com/gescom/backend/internal/domain/billing"
	"github.com/gescom/backend/internal/domain/catalog"
	"github.com/gescom/backend/internal/domain/partner"
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status billing.InvoiceStatus) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Settle(ctx context.Context, tenantID, id uuid.UUID) (*billing.SettlementResult, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SettlementResult), args.Error(1)
}

func (m *MockInvoiceRepository) DeleteCascade(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockClientRepository is a mock implementation of partner.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Client, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Client), args.Error(1)
}

func (m *MockClientRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *partner.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProductRepository) DeductStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, tenantID, productID, quantity)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type invoiceServiceFixture struct {
	invoiceRepo *MockInvoiceRepository
	clientRepo  *MockClientRepository
	productRepo *MockProductRepository
	service     *InvoiceService
	tenantID    uuid.UUID
}

func newInvoiceServiceFixture(t *testing.T) *invoiceServiceFixture {
	t.Helper()
	f := &invoiceServiceFixture{
		invoiceRepo: new(MockInvoiceRepository),
		clientRepo:  new(MockClientRepository),
		productRepo: new(MockProductRepository),
		tenantID:    uuid.New(),
	}
	f.service = NewInvoiceService(f.invoiceRepo, f.clientRepo, f.productRepo)
	return f
}

func (f *invoiceServiceFixture) client(t *testing.T) *partner.Client {
	t.Helper()
	client, err := partner.NewClient(f.tenantID, "Client A")
	require.NoError(t, err)
	return client
}

func (f *invoiceServiceFixture) product(t *testing.T, name string, price string, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(f.tenantID, name, decimal.RequireFromString(price))
	require.NoError(t, err)
	if stock > 0 {
		err = product.Apply(catalog.ProductPatch{Stock: &stock})
		require.NoError(t, err)
	}
	return product
}

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates invoice with catalog and ad-hoc lines", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		client := f.client(t)
		product := f.product(t, "Produit A", "1000.00", 10)

		f.clientRepo.On("FindByIDForTenant", ctx, f.tenantID, client.ID).Return(client, nil)
		f.productRepo.On("FindByIDs", ctx, f.tenantID, []uuid.UUID{product.ID}).
			Return([]catalog.Product{*product}, nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		adHocPrice := decimal.RequireFromString("500.00")
		resp, err := f.service.Create(ctx, f.tenantID, CreateInvoiceRequest{
			Number:   "FAC-2024-001",
			ClientID: client.ID,
			TvaRate:  18,
			Items: []CreateInvoiceItemInput{
				{ProductID: &product.ID, Quantity: 3},
				{Name: "Prestation", Quantity: 1, PriceHT: &adHocPrice},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "FAC-2024-001", resp.Number)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "3500.00", resp.TotalHT.StringFixed(2))
		assert.Equal(t, "630.00", resp.TotalTVA.StringFixed(2))
		assert.Equal(t, "4130.00", resp.TotalTTC.StringFixed(2))
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "catalog", resp.Items[0].Kind)
		assert.Equal(t, "Produit A", resp.Items[0].ProductName)
		assert.Equal(t, "1000.00", resp.Items[0].PriceHT.StringFixed(2))
		assert.Equal(t, "ad_hoc", resp.Items[1].Kind)
		assert.Nil(t, resp.Items[1].ProductID)
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("snapshots product price unless overridden", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		client := f.client(t)
		product := f.product(t, "Produit B", "250.00", 5)

		f.clientRepo.On("FindByIDForTenant", ctx, f.tenantID, client.ID).Return(client, nil)
		f.productRepo.On("FindByIDs", ctx, f.tenantID, []uuid.UUID{product.ID}).
			Return([]catalog.Product{*product}, nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		override := decimal.RequireFromString("200.00")
		resp, err := f.service.Create(ctx, f.tenantID, CreateInvoiceRequest{
			Number:   "FAC-2024-002",
			ClientID: client.ID,
			TvaRate:  10,
			Items: []CreateInvoiceItemInput{
				{ProductID: &product.ID, Quantity: 2, PriceHT: &override},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "200.00", resp.Items[0].PriceHT.StringFixed(2))
		assert.Equal(t, "400.00", resp.TotalHT.StringFixed(2))
	})

	t.Run("fails when client does not resolve in tenant", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		clientID := uuid.New()
		f.clientRepo.On("FindByIDForTenant", ctx, f.tenantID, clientID).Return(nil, shared.ErrNotFound)

		price := decimal.RequireFromString("10.00")
		_, err := f.service.Create(ctx, f.tenantID, CreateInvoiceRequest{
			Number:   "FAC-2024-003",
			ClientID: clientID,
			TvaRate:  18,
			Items:    []CreateInvoiceItemInput{{Name: "X", Quantity: 1, PriceHT: &price}},
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.invoiceRepo.AssertNotCalled(t, "Save")
	})

	t.Run("fails when a referenced product is missing", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		client := f.client(t)
		missingID := uuid.New()

		f.clientRepo.On("FindByIDForTenant", ctx, f.tenantID, client.ID).Return(client, nil)
		f.productRepo.On("FindByIDs", ctx, f.tenantID, []uuid.UUID{missingID}).
			Return([]catalog.Product{}, nil)

		_, err := f.service.Create(ctx, f.tenantID, CreateInvoiceRequest{
			Number:   "FAC-2024-004",
			ClientID: client.ID,
			TvaRate:  18,
			Items:    []CreateInvoiceItemInput{{ProductID: &missingID, Quantity: 1}},
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.invoiceRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects invalid tax rate before touching the catalog", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		client := f.client(t)
		f.clientRepo.On("FindByIDForTenant", ctx, f.tenantID, client.ID).Return(client, nil)

		price := decimal.RequireFromString("10.00")
		_, err := f.service.Create(ctx, f.tenantID, CreateInvoiceRequest{
			Number:   "FAC-2024-005",
			ClientID: client.ID,
			TvaRate:  7,
			Items:    []CreateInvoiceItemInput{{Name: "X", Quantity: 1, PriceHT: &price}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TAX_RATE", domainErr.Code)
		f.productRepo.AssertNotCalled(t, "FindByIDs")
	})

	t.Run("rejects ad-hoc line without a price", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		client := f.client(t)
		f.clientRepo.On("FindByIDForTenant", ctx, f.tenantID, client.ID).Return(client, nil)

		_, err := f.service.Create(ctx, f.tenantID, CreateInvoiceRequest{
			Number:   "FAC-2024-006",
			ClientID: client.ID,
			TvaRate:  18,
			Items:    []CreateInvoiceItemInput{{Name: "Prestation", Quantity: 1}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	})
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	pendingInvoice := func(t *testing.T, f *invoiceServiceFixture) *billing.Invoice {
		t.Helper()
		product := f.product(t, "Produit A", "1000.00", 10)
		item, err := billing.NewCatalogItem(product.ID, product.Name, 3, product.PriceHT)
		require.NoError(t, err)
		invoice, err := billing.NewInvoice(f.tenantID, "FAC-1", uuid.New(), "Client A", billing.TaxRate(18), []*billing.InvoiceItem{item})
		require.NoError(t, err)
		invoice.ClearDomainEvents()
		return invoice
	}

	t.Run("settles on transition to paid", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		invoice := pendingInvoice(t, f)

		settled := *invoice
		settled.Status = billing.InvoiceStatusPaid

		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).
			Return(invoice, nil).Once()
		f.invoiceRepo.On("Settle", ctx, f.tenantID, invoice.ID).
			Return(&billing.SettlementResult{
				Settled:    true,
				Sales:      invoice.MaterializeSales(),
				Decrements: invoice.SettlementDecrements(),
			}, nil)
		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).
			Return(&settled, nil)

		resp, err := f.service.UpdateStatus(ctx, f.tenantID, invoice.ID, UpdateInvoiceStatusRequest{Status: "paid"})

		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		f.invoiceRepo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("already paid invoice settles nothing", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		invoice := pendingInvoice(t, f)
		invoice.Status = billing.InvoiceStatusPaid

		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Settle", ctx, f.tenantID, invoice.ID).
			Return(&billing.SettlementResult{Settled: false}, nil)

		resp, err := f.service.UpdateStatus(ctx, f.tenantID, invoice.ID, UpdateInvoiceStatusRequest{Status: "paid"})

		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
	})

	t.Run("non-settling status is a plain update", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		invoice := pendingInvoice(t, f)

		updated := *invoice
		updated.Status = billing.InvoiceStatusPartiallySettled

		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).
			Return(invoice, nil).Once()
		f.invoiceRepo.On("UpdateStatus", ctx, f.tenantID, invoice.ID, billing.InvoiceStatusPartiallySettled).
			Return(nil)
		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).
			Return(&updated, nil)

		resp, err := f.service.UpdateStatus(ctx, f.tenantID, invoice.ID, UpdateInvoiceStatusRequest{Status: "partially-settled"})

		require.NoError(t, err)
		assert.Equal(t, "partially-settled", resp.Status)
		f.invoiceRepo.AssertNotCalled(t, "Settle")
	})

	t.Run("rejects unknown status before persistence", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)

		_, err := f.service.UpdateStatus(ctx, f.tenantID, uuid.New(), UpdateInvoiceStatusRequest{Status: "payee"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATUS", domainErr.Code)
		f.invoiceRepo.AssertNotCalled(t, "FindByIDForTenant")
		f.invoiceRepo.AssertNotCalled(t, "Settle")
	})

	t.Run("publishes settlement events when the edge fires", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		invoice := pendingInvoice(t, f)

		publisher := new(MockEventPublisher)
		publisher.On("Publish", ctx, mock.Anything).Return(nil)
		f.service.SetEventPublisher(publisher)

		settled := *invoice
		settled.Status = billing.InvoiceStatusPaid

		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).
			Return(invoice, nil).Once()
		f.invoiceRepo.On("Settle", ctx, f.tenantID, invoice.ID).
			Return(&billing.SettlementResult{
				Settled:    true,
				Sales:      invoice.MaterializeSales(),
				Decrements: invoice.SettlementDecrements(),
			}, nil)
		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).
			Return(&settled, nil)

		_, err := f.service.UpdateStatus(ctx, f.tenantID, invoice.ID, UpdateInvoiceStatusRequest{Status: "paid"})

		require.NoError(t, err)
		// settled + one stock deduction + status change
		publisher.AssertNumberOfCalls(t, "Publish", 3)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades through the repository", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		product := f.product(t, "Produit A", "100.00", 1)
		item, err := billing.NewCatalogItem(product.ID, product.Name, 1, product.PriceHT)
		require.NoError(t, err)
		invoice, err := billing.NewInvoice(f.tenantID, "FAC-9", uuid.New(), "Client A", billing.TaxRate(18), []*billing.InvoiceItem{item})
		require.NoError(t, err)

		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("DeleteCascade", ctx, f.tenantID, invoice.ID).Return(nil)

		err = f.service.Delete(ctx, f.tenantID, invoice.ID)

		require.NoError(t, err)
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("missing invoice is not found", func(t *testing.T) {
		f := newInvoiceServiceFixture(t)
		invoiceID := uuid.New()
		f.invoiceRepo.On("FindByIDForTenant", ctx, f.tenantID, invoiceID).Return(nil, shared.ErrNotFound)

		err := f.service.Delete(ctx, f.tenantID, invoiceID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.invoiceRepo.AssertNotCalled(t, "DeleteCascade")
	})
}
