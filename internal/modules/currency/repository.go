package currency

import "context"

// Repository defines persistence operations for exchange rates.
type Repository interface {
	List(ctx context.Context) ([]*Rate, error)
	Get(ctx context.Context, code string) (*Rate, error)
	Upsert(ctx context.Context, r *Rate) error
	Delete(ctx context.Context, code string) error
}
