package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/database"
)

// Points is the loyalty award for spending total at rate points per unit.
func Points(total, rate decimal.Decimal) int64 {
	if !total.IsPositive() || !rate.IsPositive() {
		return 0
	}
	return total.Mul(rate).Floor().IntPart()
}

// CreditPurchase adds an order's total and points to the customer using q.
func CreditPurchase(ctx context.Context, q database.Querier, id uuid.UUID, total, rate decimal.Decimal) (int64, error) {
	points := Points(total, rate)
	return points, applySpend(ctx, q, id, total, points)
}

// DebitPurchase takes back the total and the points granted for an order.
func DebitPurchase(ctx context.Context, q database.Querier, id uuid.UUID, total decimal.Decimal, points int64) error {
	return applySpend(ctx, q, id, total.Neg(), -points)
}

func applySpend(ctx context.Context, q database.Querier, id uuid.UUID, total decimal.Decimal, points int64) error {
	res, err := q.ExecContext(ctx, `
		UPDATE customers
		SET loyalty_points = GREATEST(loyalty_points + $1, 0), total_spent = GREATEST(total_spent + $2, 0), updated_at = NOW()
		WHERE id = $3`, points, total, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("customer %s not found", id)
	}
	return nil
}
