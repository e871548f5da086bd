package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/modules/inventory"
)

// Repository defines persistence operations for orders.
type Repository interface {
	// Create stores the order with its items, books the stock moves against
	// it and credits the customer's loyalty, all in one transaction.
	Create(ctx context.Context, o *Order, moves []inventory.Adjustment, loyaltyRate decimal.Decimal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	List(ctx context.Context, f Filter) ([]*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	// Cancel marks o cancelled, reverses its stock moves and debits the
	// loyalty it earned.
	Cancel(ctx context.Context, o *Order, userID *uuid.UUID) error
	AssignCourier(ctx context.Context, id uuid.UUID, courierID uuid.UUID) error
}
