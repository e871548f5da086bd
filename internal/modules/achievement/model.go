package achievement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metrics an achievement can be measured on.
const (
	MetricOrdersCount = "orders_count"
	MetricSalesTotal  = "sales_total"
	MetricItemsSold   = "items_sold"
)

// Achievement is a badge staff earn once a sales metric reaches its threshold.
type Achievement struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Metric      string          `json:"metric"`
	Threshold   decimal.Decimal `json:"threshold"`
	Points      int             `json:"points"`
	EarnedAt    *time.Time      `json:"earned_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Request struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Metric      string          `json:"metric"`
	Threshold   decimal.Decimal `json:"threshold"`
	Points      int             `json:"points"`
}

// Metrics are a user's lifetime sales figures over non-cancelled orders.
type Metrics struct {
	OrdersCount int64
	SalesTotal  decimal.Decimal
	ItemsSold   int64
}

// Value returns the figure the metric measures.
func (m Metrics) Value(metric string) decimal.Decimal {
	switch metric {
	case MetricOrdersCount:
		return decimal.NewFromInt(m.OrdersCount)
	case MetricSalesTotal:
		return m.SalesTotal
	case MetricItemsSold:
		return decimal.NewFromInt(m.ItemsSold)
	}
	return decimal.Zero
}

// Standing is one row of the leaderboard.
type Standing struct {
	Rank         int             `json:"rank"`
	UserID       uuid.UUID       `json:"user_id"`
	Name         string          `json:"name"`
	Points       int64           `json:"points"`
	Achievements int             `json:"achievements"`
	OrdersCount  int64           `json:"orders_count"`
	SalesTotal   decimal.Decimal `json:"sales_total"`
}
