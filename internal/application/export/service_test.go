package export

import (
	"context"
	"strings"
	"testing"

	"github.com/gescom/backend/internal/domain/catalog"
	"github.com/gescom/backend/internal/domain/partner"
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClientRepo struct{ mock.Mock }

func (m *mockClientRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *mockClientRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Client, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Client), args.Error(1)
}

func (m *mockClientRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClientRepo) Save(ctx context.Context, client *partner.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *mockClientRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepo) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *mockProductRepo) DeductStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	args := m.Called(ctx, tenantID, productID, quantity)
	return args.Error(0)
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("exports clients with fixed header", func(t *testing.T) {
		clientRepo := new(mockClientRepo)
		client, err := partner.NewClient(tenantID, "Client A")
		require.NoError(t, err)
		email := "a@example.com"
		require.NoError(t, client.Apply(partner.ClientPatch{Email: &email}))

		clientRepo.On("FindAllForTenant", ctx, tenantID, mock.AnythingOfType("shared.Filter")).
			Return([]partner.Client{*client}, nil)

		service := NewService(clientRepo, nil, nil, nil, nil)
		data, err := service.Export(ctx, tenantID, EntityClients)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "id,name,email,phone,address,company,created_at", lines[0])
		assert.Contains(t, lines[1], "Client A")
		assert.Contains(t, lines[1], "a@example.com")
	})

	t.Run("exports products with price and stock", func(t *testing.T) {
		productRepo := new(mockProductRepo)
		product, err := catalog.NewProduct(tenantID, "Produit A", decimal.RequireFromString("19.90"))
		require.NoError(t, err)
		stock := 7
		require.NoError(t, product.Apply(catalog.ProductPatch{Stock: &stock}))

		productRepo.On("FindAllForTenant", ctx, tenantID, mock.AnythingOfType("shared.Filter")).
			Return([]catalog.Product{*product}, nil)

		service := NewService(nil, nil, productRepo, nil, nil)
		data, err := service.Export(ctx, tenantID, EntityProducts)

		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "id,name,description,price_ht,stock,category_id,created_at", lines[0])
		assert.Contains(t, lines[1], "19.90")
		assert.Contains(t, lines[1], ",7,")
	})

	t.Run("unknown entity is a validation error", func(t *testing.T) {
		service := NewService(nil, nil, nil, nil, nil)

		_, err := service.Export(ctx, tenantID, "warehouses")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ENTITY", domainErr.Code)
	})

	t.Run("empty table yields header only", func(t *testing.T) {
		clientRepo := new(mockClientRepo)
		clientRepo.On("FindAllForTenant", ctx, tenantID, mock.AnythingOfType("shared.Filter")).
			Return([]partner.Client{}, nil)

		service := NewService(clientRepo, nil, nil, nil, nil)
		data, err := service.Export(ctx, tenantID, EntityClients)

		require.NoError(t, err)
		assert.Equal(t, "id,name,email,phone,address,company,created_at", strings.TrimSpace(string(data)))
	})
}
