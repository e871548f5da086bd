package pos

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for payments.
type Repository interface {
	// Pay records p against its order and marks the order paid. The order
	// is locked while settle checks it.
	Pay(ctx context.Context, p *Payment) (*OrderRef, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)
	// Refund marks the payment and its order refunded.
	Refund(ctx context.Context, id uuid.UUID, notes string) (*Payment, *OrderRef, error)
}
