package purchasing

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines purchase order storage.
type Repository interface {
	// Create inserts the order and its lines in one transaction.
	Create(ctx context.Context, po *PurchaseOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	List(ctx context.Context, f Filter) ([]*PurchaseOrder, error)
	// Replace rewrites header and lines of a draft order.
	Replace(ctx context.Context, po *PurchaseOrder) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Receive locks the order, checks the receipt against outstanding
	// quantities and books the stock in one transaction.
	Receive(ctx context.Context, id uuid.UUID, req ReceiveRequest, userID *uuid.UUID) (*PurchaseOrder, error)
}
