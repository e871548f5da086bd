package customer

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines customer data storage.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, search string) ([]*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListOrders(ctx context.Context, id uuid.UUID) ([]*OrderSummary, error)
}
