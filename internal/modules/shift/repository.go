package shift

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines persistence operations for shifts.
type Repository interface {
	Open(ctx context.Context, s *Shift) error
	// Current returns the user's open shift.
	Current(ctx context.Context, userID uuid.UUID) (*Shift, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Shift, error)
	List(ctx context.Context, userID *uuid.UUID, limit int) ([]*Shift, error)
	// Close cashes up the user's open shift.
	Close(ctx context.Context, userID uuid.UUID, closingCash decimal.Decimal, notes string) (*Shift, error)
}
