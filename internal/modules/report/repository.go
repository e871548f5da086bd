package report

import (
	"context"
	"time"
)

// Repository runs the read-only report queries.
type Repository interface {
	Sales(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	Daily(ctx context.Context, from, to time.Time) ([]*DailySales, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*TopProduct, error)
	Valuation(ctx context.Context) ([]*ValuationLine, error)

	Orders(ctx context.Context, from, to time.Time) ([]*OrderRow, error)
	Products(ctx context.Context) ([]*ProductRow, error)
	Customers(ctx context.Context) ([]*CustomerRow, error)
}
