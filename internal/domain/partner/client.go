package partner

import (
	"time"

	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Client represents a billable customer of one tenant.
// It is the aggregate root for client-related operations and is referenced
// by invoices in the billing context.
type Client struct {
	shared.TenantAggregateRoot
	Name    string `gorm:"type:varchar(200);not null"`
	Email   string `gorm:"type:varchar(200)"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:varchar(500)"`
	Company string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client
func NewClient(tenantID uuid.UUID, name string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}

	client := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// ClientPatch enumerates the fields a client update may change.
// Nil pointers leave the stored value untouched.
type ClientPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Company *string
}

// Apply applies the patch field by field
func (c *Client) Apply(patch ClientPatch) error {
	if patch.Name != nil {
		if err := validateClientName(*patch.Name); err != nil {
			return err
		}
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		if len(*patch.Email) > 200 {
			return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
		}
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		if len(*patch.Phone) > 50 {
			return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
		}
		c.Phone = *patch.Phone
	}
	if patch.Address != nil {
		if len(*patch.Address) > 500 {
			return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
		}
		c.Address = *patch.Address
	}
	if patch.Company != nil {
		if len(*patch.Company) > 200 {
			return shared.NewDomainError("INVALID_COMPANY", "Company cannot exceed 200 characters")
		}
		c.Company = *patch.Company
	}

	c.UpdatedAt = time.Now().UTC()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

// validateClientName validates the client name
func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}
