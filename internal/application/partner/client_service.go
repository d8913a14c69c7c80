package partner

import (
	"context"

	"github.com/gescom/backend/internal/domain/partner"
	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService handles client business operations
type ClientService struct {
	clientRepo     partner.ClientRepository
	eventPublisher shared.EventPublisher
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ClientService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(tenantID, req.Name)
	if err != nil {
		return nil, err
	}

	patch := partner.ClientPatch{}
	if req.Email != "" {
		patch.Email = &req.Email
	}
	if req.Phone != "" {
		patch.Phone = &req.Phone
	}
	if req.Address != "" {
		patch.Address = &req.Address
	}
	if req.Company != "" {
		patch.Company = &req.Company
	}
	if err := client.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, client)

	response := ToClientResponse(client)
	return &response, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves a page of clients
func (s *ClientService) List(ctx context.Context, tenantID uuid.UUID, filter ClientListFilter) (*shared.Paginated[ClientResponse], error) {
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

	clients, err := s.clientRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.clientRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Update applies a partial update to a client
func (s *ClientService) Update(ctx context.Context, tenantID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	patch := partner.ClientPatch{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Company: req.Company,
	}
	if err := client.Apply(patch); err != nil {
		return nil, err
	}

	client.AddDomainEvent(partner.NewClientUpdatedEvent(client))

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, client)

	response := ToClientResponse(client)
	return &response, nil
}

// Delete removes a client. Invoices referencing the client keep their
// stored client name snapshot.
func (s *ClientService) Delete(ctx context.Context, tenantID, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return err
	}

	if err := s.clientRepo.DeleteForTenant(ctx, tenantID, clientID); err != nil {
		return err
	}

	client.AddDomainEvent(partner.NewClientDeletedEvent(client))
	s.publishEvents(ctx, client)
	return nil
}

func (s *ClientService) publishEvents(ctx context.Context, client *partner.Client) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range client.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	client.ClearDomainEvents()
}
