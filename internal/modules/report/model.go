package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary aggregates non-cancelled orders placed in a period.
type SalesSummary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	OrderCount    int64           `json:"order_count"`
	Gross         decimal.Decimal `json:"gross"`
	Discounts     decimal.Decimal `json:"discounts"`
	Net           decimal.Decimal `json:"net"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	ByMethod      []*MethodTotal  `json:"by_method"`
}

// MethodTotal is money kept per payment method, change excluded.
type MethodTotal struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type DailySales struct {
	Day        string          `json:"day"`
	OrderCount int64           `json:"order_count"`
	Total      decimal.Decimal `json:"total"`
}

type TopProduct struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ValuationLine is the stock value of one product or component.
type ValuationLine struct {
	ItemType string          `json:"item_type"`
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Value    decimal.Decimal `json:"value"`
}

type Valuation struct {
	Lines []*ValuationLine `json:"lines"`
	Total decimal.Decimal  `json:"total"`
}

// Rows read for exports.

type OrderRow struct {
	Number        string
	CreatedAt     time.Time
	Status        string
	OrderType     string
	Channel       string
	PaymentStatus string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

type ProductRow struct {
	Name     string
	SKU      string
	Category string
	Price    decimal.Decimal
	Cost     decimal.Decimal
	Stock    decimal.Decimal
	Unit     string
	Active   bool
}

type CustomerRow struct {
	Name          string
	Email         string
	Phone         string
	LoyaltyPoints int64
	TotalSpent    decimal.Decimal
	CreatedAt     time.Time
}
