package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for catalog data storage.
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateComponent(ctx context.Context, c *Component) error
	GetComponent(ctx context.Context, id uuid.UUID) (*Component, error)
	ListComponents(ctx context.Context) ([]*Component, error)
	UpdateComponent(ctx context.Context, c *Component) error
	DeleteComponent(ctx context.Context, id uuid.UUID) error

	// GetRecipe lists the components of a product.
	GetRecipe(ctx context.Context, productID uuid.UUID) ([]*RecipeLine, error)
	// ReplaceRecipe swaps the full component list of a product atomically.
	ReplaceRecipe(ctx context.Context, productID uuid.UUID, lines []*RecipeLine) error

	ListOptionGroups(ctx context.Context, productID uuid.UUID) ([]*OptionGroup, error)
	GetOptionGroup(ctx context.Context, id uuid.UUID) (*OptionGroup, error)
	// SaveOptionGroup inserts or updates a group and replaces its options.
	SaveOptionGroup(ctx context.Context, g *OptionGroup) error
	DeleteOptionGroup(ctx context.Context, id uuid.UUID) error
}
