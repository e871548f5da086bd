package shift

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift is a cashier's session at the till, from opening float to cash-up.
type Shift struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	OpenedAt       time.Time           `json:"opened_at"`
	ClosedAt       *time.Time          `json:"closed_at,omitempty"`
	OpeningCash    decimal.Decimal     `json:"opening_cash"`
	ClosingCash    decimal.NullDecimal `json:"closing_cash"`
	ExpectedCash   decimal.NullDecimal `json:"expected_cash"`
	CashDifference decimal.NullDecimal `json:"cash_difference"`
	Notes          string              `json:"notes"`
	OrderCount     int                 `json:"order_count"`
	SalesTotal     decimal.Decimal     `json:"sales_total"`
}

// IsOpen reports whether the shift has not been closed yet.
func (s *Shift) IsOpen() bool { return s.ClosedAt == nil }

type OpenRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

type CloseRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Notes       string          `json:"notes"`
}
