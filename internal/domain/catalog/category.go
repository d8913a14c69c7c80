package catalog

import (
	"time"

	"github.com/gescom/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category groups products inside one tenant's catalog
type Category struct {
	shared.TenantAggregateRoot
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(tenantID uuid.UUID, name, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Description:         description,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// CategoryPatch enumerates the fields a category update may change
type CategoryPatch struct {
	Name        *string
	Description *string
}

// Apply applies the patch field by field
func (c *Category) Apply(patch CategoryPatch) error {
	if patch.Name != nil {
		if err := validateCategoryName(*patch.Name); err != nil {
			return err
		}
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}

	c.UpdatedAt = time.Now().UTC()
	c.IncrementVersion()

	return nil
}

// validateCategoryName validates the category name
func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
