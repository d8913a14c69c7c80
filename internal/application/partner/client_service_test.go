package partner

import (
	"context"
	"testing"

	"github.com/gescom/backend/internal/domain/partner"
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates client with optional fields", func(t *testing.T) {
		repo := new(MockClientRepository)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Client")).Return(nil)
		service := NewClientService(repo)

		resp, err := service.Create(ctx, tenantID, CreateClientRequest{
			Name:    "Client A",
			Email:   "a@example.com",
			Company: "ACME",
		})

		require.NoError(t, err)
		assert.Equal(t, "Client A", resp.Name)
		assert.Equal(t, "a@example.com", resp.Email)
		assert.Equal(t, "ACME", resp.Company)
		assert.Equal(t, tenantID, resp.TenantID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		repo := new(MockClientRepository)
		service := NewClientService(repo)

		_, err := service.Create(ctx, tenantID, CreateClientRequest{Name: ""})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestClientService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("applies only the provided fields", func(t *testing.T) {
		repo := new(MockClientRepository)
		client, err := partner.NewClient(tenantID, "Client A")
		require.NoError(t, err)
		phone := "0601020304"
		require.NoError(t, client.Apply(partner.ClientPatch{Phone: &phone}))

		repo.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)
		repo.On("Save", ctx, client).Return(nil)
		service := NewClientService(repo)

		newName := "Client B"
		resp, err := service.Update(ctx, tenantID, client.ID, UpdateClientRequest{Name: &newName})

		require.NoError(t, err)
		assert.Equal(t, "Client B", resp.Name)
		assert.Equal(t, "0601020304", resp.Phone, "untouched field keeps its value")
	})

	t.Run("cross-tenant lookup reads as not found", func(t *testing.T) {
		repo := new(MockClientRepository)
		clientID := uuid.New()
		repo.On("FindByIDForTenant", ctx, tenantID, clientID).Return(nil, shared.ErrNotFound)
		service := NewClientService(repo)

		name := "X"
		_, err := service.Update(ctx, tenantID, clientID, UpdateClientRequest{Name: &name})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "Save")
	})
}

func TestClientService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deletes an existing client", func(t *testing.T) {
		repo := new(MockClientRepository)
		client, err := partner.NewClient(tenantID, "Client A")
		require.NoError(t, err)

		repo.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)
		repo.On("DeleteForTenant", ctx, tenantID, client.ID).Return(nil)
		service := NewClientService(repo)

		require.NoError(t, service.Delete(ctx, tenantID, client.ID))
		repo.AssertExpectations(t)
	})

	t.Run("missing client is not found", func(t *testing.T) {
		repo := new(MockClientRepository)
		clientID := uuid.New()
		repo.On("FindByIDForTenant", ctx, tenantID, clientID).Return(nil, shared.ErrNotFound)
		service := NewClientService(repo)

		err := service.Delete(ctx, tenantID, clientID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "DeleteForTenant")
	})
}

func TestClientService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("paginates with defaults", func(t *testing.T) {
		repo := new(MockClientRepository)
		clientA, err := partner.NewClient(tenantID, "Client A")
		require.NoError(t, err)
		clientB, err := partner.NewClient(tenantID, "Client B")
		require.NoError(t, err)

		repo.On("FindAllForTenant", ctx, tenantID, mock.AnythingOfType("shared.Filter")).
			Return([]partner.Client{*clientA, *clientB}, nil)
		repo.On("CountForTenant", ctx, tenantID, mock.AnythingOfType("shared.Filter")).
			Return(int64(2), nil)
		service := NewClientService(repo)

		result, err := service.List(ctx, tenantID, ClientListFilter{})

		require.NoError(t, err)
		assert.Len(t, result.Items, 2)
		assert.Equal(t, int64(2), result.Total)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 20, result.PageSize)
	})
}
