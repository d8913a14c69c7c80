package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	partnerapp "github.com/gescom/backend/internal/application/partner"
	"github.com/gescom/backend/internal/domain/partner"
	"github.com/gescom/backend/internal/domain/shared"
)

type mockClientRepo struct {
	mock.Mock
}

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

func newClientTestRouter(repo *mockClientRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewClientHandler(partnerapp.NewClientService(repo))
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestClientHandler_Create(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates client", func(t *testing.T) {
		repo := new(mockClientRepo)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Client")).Return(nil)
		engine := newClientTestRouter(repo)

		body := `{"name":"Acme SARL","email":"contact@acme.example"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/partner/clients", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", tenantID.String())
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Acme SARL")
		repo.AssertExpectations(t)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		repo := new(mockClientRepo)
		engine := newClientTestRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/partner/clients", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", tenantID.String())
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects missing tenant", func(t *testing.T) {
		repo := new(mockClientRepo)
		engine := newClientTestRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/partner/clients", strings.NewReader(`{"name":"Acme"}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClientHandler_GetByID(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns client", func(t *testing.T) {
		client, err := partner.NewClient(tenantID, "Acme SARL")
		require.NoError(t, err)

		repo := new(mockClientRepo)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, client.ID).Return(client, nil)
		engine := newClientTestRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/clients/"+client.ID.String(), nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), client.ID.String())
	})

	t.Run("maps not found to 404", func(t *testing.T) {
		missingID := uuid.New()
		repo := new(mockClientRepo)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, missingID).Return(nil, shared.ErrNotFound)
		engine := newClientTestRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/clients/"+missingID.String(), nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		repo := new(mockClientRepo)
		engine := newClientTestRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/clients/not-a-uuid", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClientHandler_List(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns paginated list", func(t *testing.T) {
		a, err := partner.NewClient(tenantID, "Alpha")
		require.NoError(t, err)
		b, err := partner.NewClient(tenantID, "Beta")
		require.NoError(t, err)

		repo := new(mockClientRepo)
		repo.On("FindAllForTenant", mock.Anything, tenantID, mock.Anything).Return([]partner.Client{*a, *b}, nil)
		repo.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(2), nil)
		engine := newClientTestRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/clients?page=1&page_size=10", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Alpha")
		assert.Contains(t, w.Body.String(), `"total":2`)
	})
}
